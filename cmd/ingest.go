package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/finsight/finsight/internal/semantic"
)

var (
	ingestWorkspace string
	ingestType      string
	ingestFile      string
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [text]",
	Short: "Store documents in a workspace",
	Long: `Store one document given as an argument, or a batch from a JSONL
file where each line is {"content": ..., "type": ..., "metadata": ...}.

Failed batch items are reported individually; the rest of the batch is
stored regardless.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runIngest(cmd.Context(), args)
	},
}

func init() {
	ingestCmd.Flags().StringVarP(&ingestWorkspace, "workspace", "w", "", "workspace id (required)")
	ingestCmd.Flags().StringVarP(&ingestType, "type", "t", "", "document type (insight, recommendation, summary, chat, other)")
	ingestCmd.Flags().StringVarP(&ingestFile, "file", "f", "", "JSONL file with one document per line (- for stdin)")
	_ = ingestCmd.MarkFlagRequired("workspace")
	rootCmd.AddCommand(ingestCmd)
}

// jsonlItem is one line of a batch ingestion file.
type jsonlItem struct {
	Content  string         `json:"content"`
	Type     string         `json:"type,omitempty"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

func runIngest(parent context.Context, args []string) error {
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if ingestFile == "" && len(args) == 0 {
		return fmt.Errorf("provide document text or --file")
	}

	a, err := newApp(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := a.Close(context.Background()); closeErr != nil {
			a.Logger.Warn("shutdown error", "error", closeErr)
		}
	}()

	if ingestFile == "" {
		doc, err := a.Service.StoreOne(ctx, semantic.Item{
			Content:     args[0],
			WorkspaceID: ingestWorkspace,
			Type:        ingestType,
		})
		if err != nil {
			return fmt.Errorf("storing document: %w", err)
		}
		fmt.Printf("stored %s\n", doc.ID)
		return nil
	}

	items, err := readJSONL(ingestFile)
	if err != nil {
		return err
	}

	stored, failures, err := a.Service.StoreBatch(ctx, items)
	if err != nil {
		return fmt.Errorf("ingesting batch: %w", err)
	}

	fmt.Printf("stored %d of %d documents\n", len(stored), len(items))
	for _, f := range failures {
		fmt.Fprintf(os.Stderr, "  line %d: %v\n", f.Index+1, f.Err)
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d documents failed", len(failures))
	}
	return nil
}

// readJSONL parses a batch file into ingestion items, applying the
// command-line workspace and type defaults. "-" reads standard input.
func readJSONL(path string) ([]semantic.Item, error) {
	var in io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("opening %s: %w", path, err)
		}
		defer f.Close()
		in = f
	}

	var items []semantic.Item
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var item jsonlItem
		if err := json.Unmarshal(raw, &item); err != nil {
			return nil, fmt.Errorf("parsing %s line %d: %w", path, line, err)
		}
		docType := item.Type
		if docType == "" {
			docType = ingestType
		}
		items = append(items, semantic.Item{
			Content:     item.Content,
			Metadata:    item.Metadata,
			WorkspaceID: ingestWorkspace,
			Type:        docType,
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return items, nil
}
