package main

import (
	"bytes"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"bom-gen/config"
	"bom-gen/core"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

func main() {
	if err := run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("Generation failed", "error", err)
		os.Exit(1)
	}
}

func run(output io.Writer, args []string) error {
	flags := flag.NewFlagSet("bom-gen", flag.ContinueOnError)
	flags.SetOutput(output)

	configFile := flags.String("config", "", "Path to configuration bundle (optional, built-in defaults otherwise)")
	sourcePath := flags.String("source", "", "Source workbook or csv file, or the table for dynamodb")
	driver := flags.String("driver", "", "Source driver override: xlsx, csv, mysql, postgres, sqlite, dynamodb")
	dsn := flags.String("dsn", "", "Database connection string (DSN) for sql drivers")
	templateDir := flags.String("templates", ".", "Directory holding the template workbooks")
	templateFile := flags.String("template", "", "Single template file used for every category (keeps the configured layout)")
	outputDir := flags.String("output", "./output", "Directory for output files")
	zipPath := flags.String("zip", "", "Write a zip archive to this path instead of a directory")
	codesFlag := flags.String("codes", "", "Comma separated style codes (default: every code in the source)")
	s3Bucket := flags.String("s3-bucket", "", "S3 bucket name for uploading output")
	s3Prefix := flags.String("s3-prefix", "bom-output", "S3 prefix (folder) for uploaded files")
	logLevel := flags.String("log-level", "info", "Log level: debug, info, warn, error")

	if err := flags.Parse(args); err != nil {
		return err
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(*logLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", *logLevel, err)
	}
	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	ctx := context.Background()

	// 1. Load Config Bundle
	bundle := config.Default()
	if *configFile != "" {
		slog.Info("Loading configuration bundle", "file", *configFile)
		b, err := config.LoadConfigBundle(*configFile)
		if err != nil {
			return err
		}
		bundle = b
	}
	src := &bundle.Source
	if *driver != "" {
		src.Driver = config.SourceDriver(*driver)
	}
	if *dsn != "" {
		src.DSN = *dsn
	}
	location := *sourcePath
	if src.Driver == config.DriverDynamoDB && location != "" {
		src.Table = location
	}
	if err := config.NewValidator().ValidateSource(src); err != nil {
		return fmt.Errorf("invalid source: %w", err)
	}

	// 2. Load Source
	slog.Info("Loading source", "driver", src.Driver, "location", location)
	index, err := core.LoadSource(ctx, *src, location)
	if err != nil {
		return fmt.Errorf("load source: %w", err)
	}
	slog.Info("Source loaded", "styles", index.Len())

	// 3. Generate
	genCtx, err := core.NewGenerationContext(bundle, index, *templateDir, nil)
	if err != nil {
		return err
	}
	if *templateFile != "" {
		genCtx.Override = &core.TemplateOverride{Path: *templateFile}
	}

	codes := index.AllStyleCodes()
	if *codesFlag != "" {
		codes = splitCodes(*codesFlag)
	}

	batch := core.NewBatch(genCtx)
	var sum *core.Summary
	var archive []byte
	if *zipPath != "" {
		sum, archive, err = writeZip(batch, *zipPath, codes)
	} else {
		sum, err = batch.WriteDir(codes, *outputDir)
	}
	if err != nil {
		return err
	}
	fmt.Fprintln(output, sum.Message())

	// 4. Upload to S3 if configured
	if *s3Bucket != "" && sum.Succeeded > 0 {
		slog.Info("Starting S3 upload", "bucket", *s3Bucket, "prefix", *s3Prefix)
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return fmt.Errorf("unable to load AWS SDK config for S3: %w", err)
		}

		uploader := core.NewS3Uploader(cfg, *s3Bucket, *s3Prefix)
		if *zipPath != "" {
			err = uploader.UploadBytes(ctx, uploader.Key(filepath.Base(*zipPath)), archive)
		} else {
			_, err = uploader.UploadDirectory(ctx, *outputDir)
		}
		if err != nil {
			return fmt.Errorf("failed to upload output to s3: %w", err)
		}
		slog.Info("Successfully uploaded to S3")
	}

	if n := len(sum.Failures); n > 0 {
		return fmt.Errorf("%d of %d style codes failed", n, sum.Total)
	}
	return nil
}

// writeZip builds the archive in memory and saves it to path through a temp file
// renamed into place. The archive bytes are returned for upload.
func writeZip(batch *core.Batch, path string, codes []string) (*core.Summary, []byte, error) {
	var buf bytes.Buffer
	sum, err := batch.WriteArchive(&buf, codes)
	if err != nil {
		return nil, nil, err
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	tmp, err := os.CreateTemp(dir, ".bom-*.zip")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create archive: %w", err)
	}
	_, err = tmp.Write(buf.Bytes())
	if closeErr := tmp.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return nil, nil, fmt.Errorf("failed to save archive: %w", err)
	}
	return sum, buf.Bytes(), nil
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.Split(s, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}
