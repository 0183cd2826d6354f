package model

import "time"

// ContractSheet is the data rendered onto a contract cover sheet PDF.
type ContractSheet struct {
	Contract    Contract
	PartyA      User
	PartyB      User
	GeneratedAt time.Time
}

// ContractRegister is the data behind the xlsx export of a user's contracts.
type ContractRegister struct {
	Owner       User
	GeneratedAt time.Time
	Contracts   []Contract
}
