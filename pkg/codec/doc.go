// Package codec reads and writes the line-oriented text artifacts of the
// storefront.
//
// Every record is a fixed sequence of "Label: value" lines. The value is the
// text after the first colon, trimmed. Blank lines are skipped, so the blank
// separator written after each catalog product is optional on read.
//
// Product and cart line (6 lines):
//
//	Title: Τσίπουρο Χωρίς Γλυκάνισο 200ml
//	Description: ...
//	Category: Αλκοολούχα ποτά
//	Subcategory: Τσίπουρο
//	Price: 6,50€
//	Quantity: 97 τεμάχια
//
// Customer (4 lines): username, password, firstName, surname.
//
// Order (4 lines):
//
//	Status: Εκκρεμής
//	Date: 14/10/2026 18:30:00
//	boughtProducts: Coca Cola|Νερό Μεταλλικό 1,5lt|
//	totalOrderCost: 1,80€
//
// Malformed content is reported as a *CorruptRecordError carrying the line
// number. Readers never see missing files; that case belongs to the caller.
package codec
