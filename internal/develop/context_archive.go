package develop

import (
	"archive/tar"
	"fmt"
	"io"
	"os"
	"time"
)

const (
	buildContextFilePatternConstant             = "devtools-build-context-*.tar"
	installerArchiveNameConstant                = "gift_ppa_install.sh"
	dockerfileArchiveNameConstant               = "Dockerfile"
	installerArchiveModeConstant                = 0o755
	dockerfileArchiveModeConstant               = 0o644
	archiveEntryErrorTemplateConstant           = "add %s to build context: %w"
	buildContextCreateErrorTemplateConstant     = "create build context: %w"
	buildContextFinalizeErrorTemplateConstant   = "finalize build context: %w"
	buildContextRewindErrorTemplateConstant     = "rewind build context: %w"
	buildContextSourceReadErrorTemplateConstant = "read %s: %w"
)

type buildContextEntry struct {
	name     string
	mode     int64
	contents []byte
}

// buildContext is a temporary tar archive holding a docker build context.
type buildContext struct {
	file *os.File
}

// newBuildContext writes entries into a temporary tar file and rewinds it for reading.
// The file is removed again if any step fails.
func newBuildContext(entries []buildContextEntry, modificationTime time.Time) (*buildContext, error) {
	archiveFile, createError := os.CreateTemp("", buildContextFilePatternConstant)
	if createError != nil {
		return nil, fmt.Errorf(buildContextCreateErrorTemplateConstant, createError)
	}
	archive := &buildContext{file: archiveFile}

	if writeError := writeBuildContext(archiveFile, entries, modificationTime); writeError != nil {
		archive.Close()
		return nil, writeError
	}
	if _, seekError := archiveFile.Seek(0, io.SeekStart); seekError != nil {
		archive.Close()
		return nil, fmt.Errorf(buildContextRewindErrorTemplateConstant, seekError)
	}
	return archive, nil
}

// Read implements io.Reader.
func (archive *buildContext) Read(buffer []byte) (int, error) {
	return archive.file.Read(buffer)
}

// Path reports the archive location.
func (archive *buildContext) Path() string {
	return archive.file.Name()
}

// Close closes and deletes the archive.
func (archive *buildContext) Close() error {
	closeError := archive.file.Close()
	removeError := os.Remove(archive.file.Name())
	if closeError != nil {
		return closeError
	}
	return removeError
}

func writeBuildContext(output io.Writer, entries []buildContextEntry, modificationTime time.Time) error {
	archiveWriter := tar.NewWriter(output)
	for _, entry := range entries {
		header := &tar.Header{
			Name:     entry.name,
			Mode:     entry.mode,
			Size:     int64(len(entry.contents)),
			ModTime:  modificationTime,
			Typeflag: tar.TypeReg,
		}
		if headerError := archiveWriter.WriteHeader(header); headerError != nil {
			return fmt.Errorf(archiveEntryErrorTemplateConstant, entry.name, headerError)
		}
		if _, writeError := archiveWriter.Write(entry.contents); writeError != nil {
			return fmt.Errorf(archiveEntryErrorTemplateConstant, entry.name, writeError)
		}
	}
	if closeError := archiveWriter.Close(); closeError != nil {
		return fmt.Errorf(buildContextFinalizeErrorTemplateConstant, closeError)
	}
	return nil
}

func readBuildContextEntry(path string, archiveName string, mode int64) (buildContextEntry, error) {
	contents, readError := os.ReadFile(path)
	if readError != nil {
		return buildContextEntry{}, fmt.Errorf(buildContextSourceReadErrorTemplateConstant, path, readError)
	}
	return buildContextEntry{name: archiveName, mode: mode, contents: contents}, nil
}
