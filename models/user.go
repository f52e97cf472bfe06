package models

import (
	"time"
)

// Partition identifies which balance bucket of a user an operation touches.
type Partition string

const (
	PartitionWallet Partition = "wallet"
	PartitionBank   Partition = "bank"
)

// Valid reports whether p is a known balance partition.
func (p Partition) Valid() bool {
	return p == PartitionWallet || p == PartitionBank
}

// User represents a player account with its balance partitions.
// Balances are integers in the smallest currency unit and never go negative;
// they are mutated only through the wallet service, which pairs every
// mutation with a ledger entry in the same transaction.
type User struct {
	ID        int64     `db:"id"`
	Username  string    `db:"username"`
	Wallet    int64     `db:"wallet"`
	Bank      int64     `db:"bank"`
	Banned    bool      `db:"banned"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

// BalanceOf returns the balance of the given partition.
func (u *User) BalanceOf(p Partition) int64 {
	if p == PartitionBank {
		return u.Bank
	}
	return u.Wallet
}
