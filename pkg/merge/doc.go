// Package merge materializes a layered configuration tree into a
// destination directory.
//
// Three sources take part at every directory level: the base layer, an
// optional overlay layer holding entries of the same relative names, and
// whatever already exists at the destination. For each child of a base
// directory the Engine applies these rules, in order:
//
//   - Skip: a destination entry that exists and is not a directory is never
//     touched.
//   - Symlink: a base symlink is recreated at the destination with the same
//     target. Links are never followed.
//   - Directory: a missing destination directory is created with the base
//     directory's permission bits, then the engine recurses into it.
//   - File: a text file with a same-named overlay file is expanded (every
//     line starting with #!include, case-insensitively, is replaced by the
//     whole overlay file). Anything else is copied verbatim. Either way the
//     result is written to a scratch file next to the destination and
//     renamed into place.
//
// After the base pass, the overlay directory itself is merged into the
// same destination with no further overlay. That second pass only adds
// overlay-only names, because everything the base pass produced already
// exists and is skipped.
//
// Errors abort the run immediately. Whatever was written before the
// failure stays in place.
package merge
