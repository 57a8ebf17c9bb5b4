package fetch

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/temirov/pinfetch/internal/gitrepo"
	"github.com/temirov/pinfetch/internal/manifest"
	"github.com/temirov/pinfetch/internal/ui"
)

const (
	listingIndexHeaderConstant         = "#"
	listingPackageHeaderConstant       = "Package"
	listingURLHeaderConstant           = "URL"
	listingVersionHeaderConstant       = "Version"
	listingStateHeaderConstant         = "Working Copy"
	workingCopyPresentConstant         = "present"
	workingCopyMissingConstant         = "missing"
	workingCopyNotADirTemplateConstant = "%s is not a directory"
	listingInvalidPrefixConstant       = "invalid: "
)

// ListingEntry describes one manifest entry and the state of its working copy.
type ListingEntry struct {
	Index       int
	Name        string
	URL         string
	Version     string
	WorkingCopy string
	Present     bool
	Err         error
}

// BuildListing inspects every manifest entry without running git.
func BuildListing(collection manifest.Manifest, outputDirectory string, fileSystem FileSystem) []ListingEntry {
	entries := make([]ListingEntry, 0, len(collection.Packages))
	for packageIndex, pkg := range collection.Packages {
		entry := ListingEntry{Index: packageIndex + 1, URL: strings.TrimSpace(pkg.URL)}
		entry.Version, _ = pkg.PrimaryVersion()

		entry.Err = describeListingEntry(&entry, outputDirectory, fileSystem)
		entries = append(entries, entry)
	}
	return entries
}

func describeListingEntry(entry *ListingEntry, outputDirectory string, fileSystem FileSystem) error {
	if len(entry.URL) == 0 {
		return ErrMissingURL
	}
	workingCopyName, nameError := gitrepo.WorkingCopyName(entry.URL)
	if nameError != nil {
		return nameError
	}
	entry.Name = workingCopyName
	entry.WorkingCopy = filepath.Join(outputDirectory, workingCopyName)

	if fileSystem != nil {
		if fileInfo, statError := fileSystem.Stat(entry.WorkingCopy); statError == nil {
			if !fileInfo.IsDir() {
				return fmt.Errorf(workingCopyNotADirTemplateConstant, entry.WorkingCopy)
			}
			entry.Present = true
		}
	}

	if len(entry.Version) == 0 {
		return ErrMissingVersion
	}
	return nil
}

// RenderListing renders entries as a table.
func RenderListing(entries []ListingEntry, colorize bool) string {
	headers := []string{
		listingIndexHeaderConstant,
		listingPackageHeaderConstant,
		listingURLHeaderConstant,
		listingVersionHeaderConstant,
		listingStateHeaderConstant,
	}
	aligns := []ui.ColumnAlignment{ui.AlignRight, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft, ui.AlignLeft}

	rows := make([][]string, 0, len(entries))
	for _, entry := range entries {
		state := ui.FormatStatus(workingCopyMissingConstant, ui.StatusNeutral, colorize)
		switch {
		case entry.Err != nil:
			state = ui.FormatStatus(listingInvalidPrefixConstant+entry.Err.Error(), ui.StatusFailure, colorize)
		case entry.Present:
			state = ui.FormatStatus(workingCopyPresentConstant, ui.StatusSuccess, colorize)
		}
		rows = append(rows, []string{strconv.Itoa(entry.Index), entry.Name, entry.URL, entry.Version, state})
	}
	return ui.RenderTable(headers, rows, aligns)
}
