// Package core runs a setup: it resolves the layer layout for a mode and
// hands the base, overlay and destination directories to the merge engine.
//
// # Layout
//
// A files directory holds one directory per layer:
//
//	files/
//	  main/   base layer, installed for every mode
//	  home/   overlay for "syssetup home", destination $HOME
//	  root/   overlay for "syssetup root", destination /
//
// Files in the base layer are copied unless the destination already has
// something at that path. A base text file containing "#!include" lines
// gets the overlay file of the same relative path spliced in at each
// directive. Names present only in the overlay are copied as they are.
package core
