package models

// OwnerView is the slice of an Identity exposed alongside an account.
// Only the email address and full name are ever populated.
type OwnerView struct {
	ID       string `json:"id"`
	Email    string `json:"emailAddress"`
	Fullname string `json:"fullname"`
}

// ProfileView is the read-optimised composition returned by get-user-info:
// the account with its owner and every referenced transaction expanded.
type ProfileView struct {
	ID             string        `json:"id"`
	Owner          OwnerView     `json:"owner"`
	Balance        float64       `json:"balance"`
	Pending        float64       `json:"pending"`
	TransactionNum int64         `json:"transactionNum"`
	Earnings       float64       `json:"earnings"`
	Transactions   []Transaction `json:"transactions"`
}

// ProfileSnapshot is the cached part of a ProfileView: the account row and
// its owner. Transactions are kept as references and expanded on every read,
// since other accounts may reference and change them.
type ProfileSnapshot struct {
	// Generation is the invalidation counter observed before the account was
	// read. A snapshot whose generation is behind the current one is stale.
	Generation      int64     `json:"generation"`
	ID              string    `json:"id"`
	Owner           OwnerView `json:"owner"`
	Balance         float64   `json:"balance"`
	Pending         float64   `json:"pending"`
	TransactionNum  int64     `json:"transactionNum"`
	Earnings        float64   `json:"earnings"`
	TransactionRefs []string  `json:"transactions"`
}
