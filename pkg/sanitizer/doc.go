// Package sanitizer normalizes user and device supplied values before they
// are validated and stored.
//
// All functions are idempotent. Invalid input yields an empty string rather
// than an error, so callers validate the result.
//
// Normalization includes:
//   - Vehicle numbers: trimmed and uppercased ("dl01ab1111 " becomes "DL01AB1111")
//   - Vehicle types: gate vocabulary (CAR, BIKE, AUTO) mapped to 4w, 2w, 3w
//   - Phone numbers: E.164 (+[country][number])
//   - Free text: whitespace collapsed and trimmed
package sanitizer
