package utils

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ReadFloatPairs reads a two-column numeric table. A zero separator splits on
// runs of whitespace; header drops the first line unparsed.
func ReadFloatPairs(r io.Reader, separator rune, header bool) ([][2]float64, error) {
	var result [][2]float64

	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := scanner.Text()
		if header && lineNo == 1 {
			continue
		}
		var parts []string
		if separator == 0 {
			parts = strings.Fields(line)
		} else {
			if strings.TrimSpace(line) == "" {
				continue
			}
			parts = strings.Split(line, string(separator))
		}

		// Skip empty lines
		if len(parts) == 0 {
			continue
		}

		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid format in line %d: %q - expected 2 numbers, got %d", lineNo, line, len(parts))
		}

		x, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing float in line %d %q: %w", lineNo, line, err)
		}

		y, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("error parsing float in line %d %q: %w", lineNo, line, err)
		}

		result = append(result, [2]float64{x, y})
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	return result, nil
}

func GetFilename(filePath string) string {
	base := filepath.Base(filePath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// OpenFile creates outputPath/subpath/name, making directories as needed.
func OpenFile(outputPath, subpath, name string) (*os.File, error) {
	dir := filepath.Join(outputPath, subpath)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, err
	}
	return os.Create(filepath.Join(dir, name))
}

// CopyDir copies the regular files and directories under src into dst,
// keeping file modes.
func CopyDir(src, dst string) error {
	return filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0750)
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		in, err := os.Open(path)
		if err != nil {
			return err
		}
		defer in.Close()
		out, err := os.OpenFile(target, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
		if err != nil {
			return err
		}
		if _, err := io.Copy(out, in); err != nil {
			out.Close()
			return err
		}
		return out.Close()
	})
}
