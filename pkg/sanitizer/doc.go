// Package sanitizer normalizes user input before validation and storage.
//
// All functions are idempotent: applying them twice gives the same result as
// applying them once. Invalid input is never an error here; it is left for the
// validator to reject.
//
// Normalization includes:
//   - Strings: collapse whitespace, trim leading/trailing spaces
//   - Locations: collapsed whitespace in title case - "  new   delhi " becomes "New Delhi"
//   - License numbers: trimmed and upper-cased - " dl0420110149 " becomes "DL0420110149"
//   - Payment fields: card numbers lose spaces and dashes, UPI IDs are lower-cased
package sanitizer
