package models

import "time"

// Identity is the authentication record an Account belongs to.
type Identity struct {
	ID           string    `json:"id"`
	Email        string    `json:"emailAddress"`
	Fullname     string    `json:"fullname"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdTimestamp"`
	UpdatedAt    time.Time `json:"updatedTimestamp"`
}

// Account is the wallet record. OwnerID is unique across accounts.
type Account struct {
	ID             string   `json:"id"`
	OwnerID        string   `json:"owner"`
	Balance        float64  `json:"balance"`
	Pending        float64  `json:"pending"`
	TransactionNum int64    `json:"transactionNum"`
	Earnings       float64  `json:"earnings"`
	TransactionIDs []string `json:"transactions"`
}

type Transaction struct {
	ID            string    `json:"id"`
	OwnerID       string    `json:"owner"`
	TransactionID string    `json:"transactionID"`
	Amount        float64   `json:"amount"`
	Status        string    `json:"status"`
	DeliveredOn   string    `json:"deliveredOn,omitempty"`
	CreatedAt     time.Time `json:"createdAt"`
}
