package rules

import "time"

type Policy struct {
	BillingCycle           time.Duration
	PastDueGrace           time.Duration
	FreeGenerationInterval int
	ProGenerationInterval  int
}

func DefaultPolicy() Policy {
	return Policy{
		BillingCycle:           31 * 24 * time.Hour,
		PastDueGrace:           72 * time.Hour,
		FreeGenerationInterval: 30,
		ProGenerationInterval:  7,
	}
}
