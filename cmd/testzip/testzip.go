package testzip

import (
	"fmt"

	"github.com/saintfish/chardet"
	"github.com/spf13/cobra"

	"github.com/sagan/erolauncher/archive"
	"github.com/sagan/erolauncher/cmd"
	"github.com/sagan/erolauncher/config"
	"github.com/sagan/erolauncher/util/helper"
	"github.com/sagan/erolauncher/util/stringutil"
	"github.com/sagan/zip"
)

var command = &cobra.Command{
	Use:   "testzip {filename.zip}...",
	Short: "Test the content filename encodings of zip archives",
	Long: `Test the content filename encodings of zip archives.
Shows which encoding would be used when extracting the archive with "erolauncher add".
Use --all to dump the decoded variants of every non-UTF-8 filename.`,
	Args: cobra.MatchAll(cobra.MinimumNArgs(1), cobra.OnlyValidArgs),
	RunE: testzip,
}

var (
	all     bool
	zipmode int
)

func init() {
	command.Flags().BoolVarP(&all, "all", "a", false, "Show filename encoding details of each zip")
	command.Flags().IntVarP(&zipmode, "zipmode", "", config.DEFAULT_ZIPMODE,
		"Zip filename encoding detection mode. 0 - strict; 1 - guess the best (shift_jis > gbk)")
	cmd.RootCmd.AddCommand(command)
}

func testzip(cmd *cobra.Command, args []string) (err error) {
	filenames := helper.ParseFilenameArgs(args...)

	errorCnt := 0
	for _, filename := range filenames {
		zipFile, err := zip.OpenReader(filename)
		if err != nil {
			if err == zip.ErrInsecurePath {
				zipFile.Close()
			}
			fmt.Printf("X %q: failed to open: %v\n", filename, err)
			errorCnt++
			continue
		}
		defer zipFile.Close()

		var rawFilenames []string
		for _, file := range zipFile.File {
			if file.NonUTF8 {
				rawFilenames = append(rawFilenames, file.Name)
			}
		}

		if len(rawFilenames) == 0 {
			fmt.Printf("- %q: all content filenames are marked as UTF-8\n", filename)
		} else {
			encoding, possibleEncodings, err := archive.DetectFilenamesEncoding(rawFilenames, zipmode)
			if err != nil {
				fmt.Printf("X %q: failed to detect filenames encoding: possibilities=%v, err=%v\n",
					filename, possibleEncodings, err)
				errorCnt++
			} else {
				fmt.Printf("✓ %q: detected filenames encoding: %s\n", filename, encoding)
			}
		}

		if all {
			fmt.Printf("\n")
			dumpZipNames(zipFile)
			fmt.Printf("\n")
		}
	}

	if errorCnt > 0 {
		return fmt.Errorf("%d errors", errorCnt)
	}
	return nil
}

// dumpZipNames prints every content filename of the zip along with the
// decoded variants of each possible charset of non-UTF-8 names.
func dumpZipNames(zipFile *zip.ReadCloser) {
	detector := chardet.NewTextDetector()
	for i, file := range zipFile.File {
		if !file.NonUTF8 {
			fmt.Printf("%-15d  %-10s  %v\n", i, "// UTF-8", file.Name)
			continue
		} else if stringutil.IsASCIIIndexBy8s32(file.Name) {
			fmt.Printf("%-15d  %-10s  %v\n", i, "// ASCII", file.Name)
			continue
		}
		results, err := detector.DetectAll([]byte(file.Name))
		if err != nil {
			fmt.Printf("%-15d  %-10s  %v\n", i, "ErrDetect", err)
			continue
		}
		fmt.Printf("%-15d  %-10s  %v\n", i, "Result", results)
		fmt.Printf("%-15s  %-10s  %s\n", "UTF-8", "String", file.Name)
		for _, result := range results {
			if str, err := stringutil.DecodeText([]byte(file.Name), result.Charset, false); err != nil {
				fmt.Printf("%-15s  %-10s  %v\n", result.Charset, "Err", err)
			} else {
				fmt.Printf("%-15s  %-10s  %s\n", result.Charset, "String", str)
			}
		}
	}
	// Doujin archives occasionally carry a shift_jis comment.
	if zipFile.Comment != "" {
		fmt.Printf("\n")
		if stringutil.IsASCIIIndexBy8s32(zipFile.Comment) {
			fmt.Printf("%-15s  %-10s  %s\n", "Comment", "ASCII", zipFile.Comment)
			return
		}
		results, err := detector.DetectAll([]byte(zipFile.Comment))
		if err != nil {
			fmt.Printf("%-15s  %-10s  %v\n", "Comment", "ErrDetect", err)
			return
		}
		fmt.Printf("%-15s  %-10s  %v\n", "Comment", "Result", results)
		for _, result := range results {
			if str, err := stringutil.DecodeText([]byte(zipFile.Comment), result.Charset, false); err != nil {
				fmt.Printf("%-15s  %-10s  %v\n", result.Charset, "Err", err)
			} else {
				fmt.Printf("%-15s  %-10s  %s\n", result.Charset, "String", str)
			}
		}
	}
}
