package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/ternarybob/intentrank/internal/app"
	"github.com/ternarybob/intentrank/internal/models"
	"github.com/ternarybob/intentrank/internal/services/pipeline"
	"github.com/ternarybob/intentrank/internal/services/report"
)

// runSingle scores one request and writes the result and optional report
func runSingle(ctx context.Context, a *app.App, opts pipeline.Options) error {
	req, err := readRequest(*inputFile)
	if err != nil {
		return err
	}

	result, err := a.Pipeline.Run(ctx, req.Signals, req.Prospect, opts)
	if err != nil {
		return err
	}

	if err := writeResult(*outputFile, result); err != nil {
		return err
	}

	if *reportFile != "" {
		return writeReport(a, *reportFile, result, req.Prospect)
	}
	return nil
}

// readRequest decodes an analysis request from a file or stdin
func readRequest(path string) (*models.AnalysisRequest, error) {
	var (
		data []byte
		err  error
	)
	if path == "" || path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read request: %w", err)
	}

	var req models.AnalysisRequest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &req)
	default:
		err = json.Unmarshal(data, &req)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse request: %w", err)
	}
	return &req, nil
}

func writeResult(path string, result *models.AnalysisResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}
	data = append(data, '\n')

	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write result: %w", err)
	}
	return nil
}

func writeReport(a *app.App, path string, result *models.AnalysisResult, prospect models.Prospect) error {
	md, err := report.Markdown(result, prospect)
	if err != nil {
		return err
	}

	if !strings.EqualFold(filepath.Ext(path), ".pdf") {
		return os.WriteFile(path, []byte(md), 0644)
	}

	doc, err := a.Reports.RenderPDF(md, "Intent Analysis: "+prospect.Company)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, doc.Data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}

	a.Logger.Info().Str("path", path).Int("pages", doc.Pages).Msg("PDF report written")
	fmt.Fprintf(os.Stderr, "report: %s (%d pages)\n", path, doc.Pages)
	return nil
}
