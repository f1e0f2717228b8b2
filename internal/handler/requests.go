package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

type GetUserInfoRequest struct {
	OwnerID LooseString `json:"ownerID"`
}

type ChangePasswordRequest struct {
	NewPassword LooseString `json:"newPassword" validate:"utf16min=8"`
	OwnerID     LooseString `json:"ownerID"`
}

type ChangeEmailRequest struct {
	NewEmailAddress LooseString `json:"newEmailAddress" validate:"required"`
	OwnerID         LooseString `json:"ownerID"`
}

type UpdateBalanceRequest struct {
	EmailAddress LooseString `json:"emailAddress" validate:"required"`
	Amount       JSONAmount  `json:"amount"`
	OwnerID      LooseString `json:"ownerID"`
}

type UpdateTransactionStatusRequest struct {
	Status        LooseString `json:"status" validate:"required"`
	TransactionID LooseString `json:"transactionID" validate:"required"`
	EmailAddress  LooseString `json:"emailAddress" validate:"required"`
	OwnerID       LooseString `json:"ownerID" validate:"required"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// LooseString accepts any JSON value where a string is expected, so one
// mistyped field does not void the whole body. Falsy values (null, false, 0
// and "") become the empty string; other values take their textual form.
type LooseString string

func (s *LooseString) UnmarshalJSON(data []byte) error {
	text, truthy, err := jsonText(data)
	if err != nil {
		return err
	}
	if !truthy {
		text = ""
	}
	*s = LooseString(text)
	return nil
}

// JSONAmount holds the amount of an update-balance request in textual form
// and remembers whether it counts as supplied. Zero, the empty string, false
// and null do not. Arrays take the text of their joined elements, so [5]
// reads as 5 and [] as blank.
type JSONAmount struct {
	Text     string
	Supplied bool
}

func (a *JSONAmount) UnmarshalJSON(data []byte) error {
	raw := bytes.TrimSpace(data)
	switch {
	case bytes.Equal(raw, []byte("null")):
		*a = JSONAmount{}
		return nil
	case bytes.Equal(raw, []byte("true")):
		*a = JSONAmount{Text: "1", Supplied: true}
		return nil
	case bytes.Equal(raw, []byte("false")):
		*a = JSONAmount{Text: "0"}
		return nil
	}
	text, truthy, err := jsonText(raw)
	if err != nil {
		return err
	}
	*a = JSONAmount{Text: text, Supplied: truthy}
	return nil
}

// jsonText renders a JSON value as a browser client would stringify it and
// reports whether the value is truthy. Array elements are joined with commas,
// with null elements left empty; objects never yield a usable value.
func jsonText(data []byte) (string, bool, error) {
	raw := bytes.TrimSpace(data)
	if len(raw) == 0 {
		return "", false, errors.New("empty JSON value")
	}
	switch raw[0] {
	case 'n':
		return "", false, nil
	case 't':
		return "true", true, nil
	case 'f':
		return "false", false, nil
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return "", false, err
		}
		return s, s != "", nil
	case '[':
		var elems []json.RawMessage
		if err := json.Unmarshal(raw, &elems); err != nil {
			return "", false, err
		}
		parts := make([]string, len(elems))
		for i, elem := range elems {
			text, _, err := jsonText(elem)
			if err != nil {
				return "", false, err
			}
			parts[i] = text
		}
		return strings.Join(parts, ","), true, nil
	case '{':
		return "[object Object]", true, nil
	default:
		f, err := strconv.ParseFloat(string(raw), 64)
		if err != nil && !errors.Is(err, strconv.ErrRange) {
			return "", false, err
		}
		return string(raw), f != 0, nil
	}
}
