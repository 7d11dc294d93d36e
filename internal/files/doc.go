// Package files lists and manages the directories a batch works on.
//
// Discovery: non-recursive, name-sorted listings behind the Lister
// interface. A missing directory is reported as ErrDirectoryMissing so the
// batch phases can turn it into an empty result.
//
// Manager: imports and removes source files in the input directory, builds
// the status table from which artifacts exist, and previews reports.
//
// Example usage:
//
//	lister := files.NewDiscovery()
//	sources, err := files.FindSourceFiles(lister, "xls_folder")
//	if files.IsMissingDirectory(err) {
//	    // nothing to do
//	}
package files
