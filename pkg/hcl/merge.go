package hcl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"

	"github.com/gamethread/narrative-timeline/pkg/narrative"
)

// MergeHCLFiles combines multiple HCL files into a single file body.
// This mimics how Terraform loads multiple .tf files in a directory.
func MergeHCLFiles(filePaths []string) (*hcl.File, error) {
	parser := hclparse.NewParser()
	var mergedContent bytes.Buffer

	for _, path := range filePaths {
		content, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read file %s: %w", path, err)
		}

		mergedContent.Write(content)
		mergedContent.WriteString("\n")
	}

	file, diags := parser.ParseHCL(mergedContent.Bytes(), "merged.hcl")
	if diags.HasErrors() {
		return nil, fmt.Errorf("failed to parse merged HCL content: %s", diags.Error())
	}

	return file, nil
}

// FindHCLFiles lists all .hcl files under a directory
func FindHCLFiles(dirPath string) ([]string, error) {
	var hclFiles []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".hcl") {
			hclFiles = append(hclFiles, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}
	return hclFiles, nil
}

// LoadSportProfiles loads sport profiles from a single file or from every
// .hcl file under a directory, merged
func LoadSportProfiles(path string) (map[string]narrative.SportProfile, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("failed to access path %s: %w", path, err)
	}

	files := []string{path}
	if info.IsDir() {
		files, err = FindHCLFiles(path)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no HCL files found in directory %s", path)
		}
	}

	merged, err := MergeHCLFiles(files)
	if err != nil {
		return nil, err
	}
	return parseSportProfilesFromFile(merged)
}
