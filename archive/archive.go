package archive

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/h2non/filetype"
	"github.com/saintfish/chardet"
	log "github.com/sirupsen/logrus"
	"golift.io/xtractr"

	"github.com/sagan/erolauncher/constants"
	"github.com/sagan/erolauncher/util"
	"github.com/sagan/erolauncher/util/helper"
	"github.com/sagan/erolauncher/util/stringutil"
	"github.com/sagan/zip"
)

// IsArchive reports whether filename has a supported archive ext.
func IsArchive(filename string) bool {
	return stringutil.HasAnySuffix(filename, constants.ArchiveExts...)
}

// VerifyHeader sniffs the contents of filename and errors out when they do
// not look like an archive. Catches renamed or truncated downloads before
// extraction touches them.
func VerifyHeader(filename string) error {
	buf, err := helper.ReadFileHeader(filename, 262)
	if err != nil {
		return fmt.Errorf("failed to read file header: %w", err)
	}
	if !filetype.IsArchive(buf) {
		return fmt.Errorf("%q does not look like an archive", filename)
	}
	return nil
}

// Extract extracts an archive file into dir, which is created if needed.
// Zip files go through the filename decoding path; other formats are
// delegated to xtractr. Returned file paths are relative to dir.
func Extract(filename string, dir string, zipmode int) (files []string, err error) {
	if !IsArchive(filename) {
		return nil, fmt.Errorf("%q is not a supported archive", filename)
	}
	if err = os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create dir: %w", err)
	}
	if strings.EqualFold(filepath.Ext(filename), ".zip") {
		return ExtractZip(filename, dir, zipmode)
	}
	_, fullpaths, _, err := xtractr.ExtractFile(&xtractr.XFile{
		FilePath:  filename,
		OutputDir: dir,
		FileMode:  0644,
		DirMode:   0755,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to extract %q: %w", filename, err)
	}
	for _, fullpath := range fullpaths {
		if rel, err := filepath.Rel(dir, fullpath); err == nil {
			files = append(files, filepath.ToSlash(rel))
		}
	}
	return files, nil
}

// ExtractZip extracts a zip file into dir, transcoding non-UTF-8 content
// filenames (shift_jis zips are the norm on dlsite). Returned file paths are
// relative to dir.
func ExtractZip(filename string, dir string, zipmode int) (files []string, err error) {
	zipFile, err := zip.OpenReader(filename)
	if err != nil {
		if err == zip.ErrInsecurePath {
			zipFile.Close()
		}
		return nil, fmt.Errorf("failed to open zip: %w", err)
	}
	defer zipFile.Close()

	var rawFilenames []string
	for _, file := range zipFile.File {
		if file.NonUTF8 && !stringutil.IsASCIIIndexBy8s32(file.Name) {
			rawFilenames = append(rawFilenames, file.Name)
		}
	}
	encoding := ""
	if len(rawFilenames) > 0 {
		if encoding, _, err = DetectFilenamesEncoding(rawFilenames, zipmode); err != nil {
			return nil, fmt.Errorf("failed to detect filenames encoding: %w", err)
		}
		log.Debugf("zip %q filenames encoding: %s", filename, encoding)
	}

	for _, file := range zipFile.File {
		name := file.Name
		if encoding != "" && file.NonUTF8 && !stringutil.IsASCIIIndexBy8s32(name) {
			decoded, err := stringutil.DecodeText([]byte(file.Name), encoding, false)
			if err != nil {
				return nil, fmt.Errorf("failed to decode filename %q: %w", file.Name, err)
			}
			name = string(decoded)
		}
		name = strings.Trim(filepath.ToSlash(name), "/")
		// decoded names may contain chars invalid on the local filesystem
		if file.FileInfo().IsDir() {
			name = util.CleanPath(name)
		} else {
			name = util.CleanFilePath(name)
		}
		target := filepath.Join(dir, filepath.FromSlash(name))
		if !strings.HasPrefix(target, filepath.Clean(dir)+string(os.PathSeparator)) {
			return nil, fmt.Errorf("insecure path %q in zip", file.Name)
		}
		if file.FileInfo().IsDir() {
			if err = os.MkdirAll(target, 0755); err != nil {
				return nil, fmt.Errorf("failed to create dir: %w", err)
			}
			continue
		}
		if err = writeZipFile(file, target); err != nil {
			return nil, err
		}
		files = append(files, name)
	}
	return files, nil
}

func writeZipFile(file *zip.File, target string) error {
	if err := os.MkdirAll(filepath.Dir(target), 0755); err != nil {
		return fmt.Errorf("failed to create dir: %w", err)
	}
	reader, err := file.Open()
	if err != nil {
		return fmt.Errorf("failed to open zip entry %q: %w", file.Name, err)
	}
	defer reader.Close()
	writer, err := os.OpenFile(target, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("failed to create %q: %w", target, err)
	}
	defer writer.Close()
	if _, err = io.Copy(writer, reader); err != nil {
		return fmt.Errorf("failed to write %q: %w", target, err)
	}
	return nil
}

// DetectFilenamesEncoding detects the shared text encoding of the raw
// (non-UTF-8) content filenames of a zip. zipmode 0 errors out unless exactly
// one encoding survives; zipmode 1 guesses the best one by
// constants.CjkCharsets priority (shift_jis > gbk).
func DetectFilenamesEncoding(rawFilenames []string, zipmode int) (
	encoding string, possibleEncodings []string, err error) {
	if len(rawFilenames) == 0 {
		return "", nil, fmt.Errorf("no filenames")
	}
	detector := chardet.NewTextDetector()
	results, err := detector.DetectAll([]byte(strings.Join(rawFilenames, "\n")))
	if err != nil {
		return "", nil, fmt.Errorf("failed to detect encoding: %w", err)
	}
	for _, result := range results {
		if !slices.Contains(possibleEncodings, result.Charset) {
			possibleEncodings = append(possibleEncodings, result.Charset)
		}
	}
	// keep the candidates that decode every filename without error.
	// DecodeText passes invalid UTF-8 bytes through unchanged, so check that
	// candidate ourselves.
	valid := util.FilterSlice(possibleEncodings, func(charset string) bool {
		for _, rawFilename := range rawFilenames {
			if strings.EqualFold(charset, "UTF-8") {
				if !utf8.ValidString(rawFilename) {
					return false
				}
				continue
			}
			if _, err := stringutil.DecodeText([]byte(rawFilename), charset, false); err != nil {
				return false
			}
		}
		return true
	})
	if len(valid) == 0 {
		return "", possibleEncodings, fmt.Errorf("no usable encoding detected")
	}
	if zipmode == 0 {
		if len(valid) > 1 {
			return "", possibleEncodings, fmt.Errorf("ambiguous filename encodings: %v", valid)
		}
		return valid[0], possibleEncodings, nil
	}
	for _, charset := range constants.CjkCharsets {
		for _, candidate := range valid {
			if strings.EqualFold(candidate, charset) {
				return candidate, possibleEncodings, nil
			}
		}
	}
	return valid[0], possibleEncodings, nil
}
