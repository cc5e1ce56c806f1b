// Package textutil provides filename helpers shared by the store, the
// pipeline and the editor session.
//
// Filenames are the metadata store's primary key, so every lookup goes
// through NormalizeFilename: the same wallpaper read from a filesystem that
// stores decomposed Unicode (NFD) must land on the same row as one written
// in composed form (NFC).
package textutil
