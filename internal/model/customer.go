package model

import "time"

// Customer is keyed by a unique phone number; the store enforces the
// uniqueness.  The reservation path upserts customers: looked up by
// phone, inserted if absent, updated in place when any field differs.
//
// Fields:
//  ID            – primary key identifier.
//  Name          – customer name.
//  PhoneNumber   – unique phone number (natural key).
//  Email         – optional email address (nullable).
//  WantsWhatsapp – opted in to WhatsApp messages.
//  Notes         – free-form notes (nullable).
type Customer struct {
	ID            uint64    // customers.id
	Name          string    // customers.name
	PhoneNumber   string    // customers.phone_number
	Email         *string   // customers.email (nullable)
	WantsWhatsapp bool      // customers.wants_whatsapp
	Notes         *string   // customers.notes (nullable)
	CreatedAt     time.Time // customers.created_at
	UpdatedAt     time.Time // customers.updated_at
}

// CustomerInput is the customer payload accepted by the reservation
// path; the upsert compares these fields one by one against the
// stored row.
type CustomerInput struct {
	Name          string  `json:"name"`
	PhoneNumber   string  `json:"phone_number"`
	Email         *string `json:"email"`
	WantsWhatsapp bool    `json:"wants_whatsapp"`
	Notes         *string `json:"notes"`
}
