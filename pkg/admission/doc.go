// Package admission orchestrates pod security admission: it resolves the
// candidate policies an identity may use, tries each in deterministic order,
// admits on the first policy the request satisfies, and denies with the full
// per-candidate failure list when none match.
package admission
