package main

import (
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/example/drillbot/internal/bot"
	"github.com/example/drillbot/internal/excel"
	"github.com/example/drillbot/internal/storage"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	contentDir := os.Getenv("CONTENT_DIR")
	if contentDir == "" {
		contentDir = "content"
	}

	if len(os.Args) > 1 && os.Args[1] == "import" {
		runImport(os.Args[2:], contentDir)
		return
	}

	dataDir := os.Getenv("DATA_DIR")
	if dataDir == "" {
		dataDir = "data"
	}

	var kv storage.KV
	store, err := storage.Open(dataDir)
	if err != nil {
		// Progress lives in memory for this run only.
		log.Printf("Failed to open store, continuing without persistence: %v", err)
		kv = storage.NewMemory()
	} else {
		defer store.Close()
		kv = store
	}

	b, err := bot.New(kv, contentDir)
	if err != nil {
		log.Fatalf("Failed to create bot: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		log.Printf("Received signal: %v", sig)
		b.Stop()
	}()

	log.Println("Bot started. Press Ctrl+C to stop.")
	if err := b.Start(); err != nil {
		log.Fatalf("Bot error: %v", err)
	}
}

// runImport converts a drafted spreadsheet into a curriculum YAML file.
func runImport(args []string, contentDir string) {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	config := excel.DefaultImportConfig()
	fs.StringVar(&config.FilePath, "file", "", "Excel or CSV file to import")
	fs.StringVar(&config.Language, "lang", "", "curriculum language id, e.g. tr")
	fs.StringVar(&config.Name, "name", "", "human-readable language name")
	fs.StringVar(&config.Voice, "voice", "", "TTS voice identifier")
	fs.StringVar(&config.SheetName, "sheet", config.SheetName, "sheet name for Excel files")
	if err := fs.Parse(args); err != nil {
		log.Fatalf("Failed to parse import flags: %v", err)
	}
	if config.FilePath == "" || config.Language == "" {
		log.Fatal("import requires -file and -lang")
	}

	result, err := excel.ImportCurriculum(config, contentDir)
	if err != nil {
		log.Fatalf("Import failed: %v", err)
	}
	log.Printf("Imported %d rows: %d phrases, %d frames, %d words (%d skipped)",
		result.TotalProcessed, result.Phrases, result.Frames, result.Words, result.Skipped)
	for _, e := range result.Errors {
		log.Printf("  %s", e)
	}
}
