package models

// All lists every model that AutoMigrate manages.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Question{},
		&QuizResult{},
	}
}
