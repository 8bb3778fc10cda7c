package hcl

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/hclparse"
)

// MergeHCLFiles combines multiple HCL files into a single HCL file body.
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

// hclFiles lists the .hcl files under dirPath in lexical order.
func hclFiles(dirPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(dirPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && strings.HasSuffix(info.Name(), ".hcl") {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk directory %s: %w", dirPath, err)
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no HCL files found in directory %s", dirPath)
	}
	return files, nil
}

// ParseScenarioDirectory parses all .hcl files in a directory as one scenario.
// Overflow labels must be unique across the files.
func ParseScenarioDirectory(dirPath string) (*Scenario, error) {
	files, err := hclFiles(dirPath)
	if err != nil {
		return nil, err
	}

	mergedFile, err := MergeHCLFiles(files)
	if err != nil {
		return nil, err
	}

	return parseScenarioFromFile(mergedFile)
}
