package models

// All returns every model in migration order, for AutoMigrate.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Job{},
		&Evaluation{},
		&Quote{},
		&QuoteLineItem{},
		&Checklist{},
		&ChecklistItem{},
		&Checkpoint{},
		&Wallet{},
		&WalletTransaction{},
		&PayoutEligibility{},
		&PayoutRequest{},
		&Dispute{},
		&DisputeEvent{},
		&Sequence{},
	}
}
