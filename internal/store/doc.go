// Package store persists wallpaper metadata.
//
// The table is keyed by NFC-normalized filename, loaded wholesale, mutated in
// memory and rewritten wholesale by Save. Two backends share one in-memory
// model: a CSV file (the default) and a SQLite database chosen by a .db or
// .sqlite extension. Crops are persisted as "{x}+{y}" offsets; width and
// height follow from fitting the column's aspect ratio into the image.
//
// Store is single-writer. Callers that may overlap (two `add` runs) take the
// lock file next to the store before loading.
package store
