package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

// helpCmd creates a detailed help command
func helpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "help",
		Short: "Show detailed help and documentation",
		Long:  `Display complete documentation including all commands, flags, and examples.`,
		Run: func(cmd *cobra.Command, args []string) {
			printMainBanner()

			fmt.Printf("%s%sABOUT%s\n\n", colorBold, colorOrange, colorReset)
			fmt.Printf("  duplihq finds exact and near-duplicate files for forensic review. Images\n")
			fmt.Printf("  are pre-filtered with a perceptual hash and then compared by embedding;\n")
			fmt.Printf("  documents and source files are compared by text and code embeddings.\n\n")

			fmt.Printf("%s%sCOMMANDS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %ssnapshot <folder>%s        Fingerprint a folder and diff it with the previous snapshot\n", colorBold, colorReset)
			fmt.Printf("  %sduplicates <folder>%s      Find exact and near-duplicate files\n", colorBold, colorReset)
			fmt.Printf("  %stracker <folder>%s         Watch a folder and log alerts for new duplicates\n", colorBold, colorReset)
			fmt.Printf("  %scompare <a> <b>%s          Score the similarity of two files\n", colorBold, colorReset)
			fmt.Printf("  %shashes <folder>%s          Print MD5, SHA-1 and SHA-256 of every file\n", colorBold, colorReset)

			fmt.Printf("\n%s%sDUPLICATES FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s--threshold%s <x>        Minimum similarity for a near duplicate (default: 0.40)\n", colorBold, colorReset)
			fmt.Printf("  %s-f, --format%s <fmt>     Report format: %sjson%s, %syaml%s, %stext%s, %smd%s\n",
				colorBold, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset)
			fmt.Printf("  %s-o, --output%s <file>    Output file path\n", colorBold, colorReset)
			fmt.Printf("  %s--workers%s <n>          Number of comparison workers (default: CPU cores)\n", colorBold, colorReset)
			fmt.Printf("  %s--ai-review%s            Ask Claude whether near duplicates are copies or revisions\n", colorBold, colorReset)
			fmt.Printf("  %s--ai-model%s <model>     AI model: %shaiku%s, %ssonnet%s (default), %sopus%s\n",
				colorBold, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset)
			fmt.Printf("  %s--ai-max-pairs%s <n>     Maximum pairs to review (default: 20)\n", colorBold, colorReset)

			fmt.Printf("\n%s%sTRACKER FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s--interval%s <dur>       Polling interval (default: 30s)\n", colorBold, colorReset)
			fmt.Printf("  %s--listen%s <addr>        Serve /status and /healthz\n", colorBold, colorReset)

			fmt.Printf("\n%s%sCOMPARE FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s-m, --model%s <name>     Modality: %svisual-grid%s, %svisual-histogram%s, %stext%s, %scode%s\n",
				colorBold, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset, colorCyan, colorReset)
			fmt.Printf("  %s--auto%s                 Pick the modality from the first file's type\n", colorBold, colorReset)
			fmt.Printf("  %s--threshold%s <x>        Similarity above which files are similar (default: 0.9)\n", colorBold, colorReset)

			fmt.Printf("\n%s%sGLOBAL FLAGS%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s--config%s <file>        Config file (yaml, toml or json)\n", colorBold, colorReset)
			fmt.Printf("  %s-v, --verbose%s          Enable verbose logging\n", colorBold, colorReset)
			fmt.Printf("  %s-h, --help%s             Show help for any command\n", colorBold, colorReset)
			fmt.Printf("  %s--version%s              Show version\n", colorBold, colorReset)

			fmt.Printf("\n%s%sEXAMPLES%s\n\n", colorBold, colorOrange, colorReset)

			fmt.Printf("  %s# Snapshot evidence before and after an incident%s\n", colorGray, colorReset)
			fmt.Printf("  duplihq snapshot /evidence/share\n\n")

			fmt.Printf("  %s# Markdown duplicate report%s\n", colorGray, colorReset)
			fmt.Printf("  duplihq duplicates --format=md /evidence/share\n\n")

			fmt.Printf("  %s# Review near-duplicate documents with Claude%s\n", colorGray, colorReset)
			fmt.Printf("  duplihq duplicates --ai-review /evidence/docs\n\n")

			fmt.Printf("  %s# Watch a folder every minute%s\n", colorGray, colorReset)
			fmt.Printf("  duplihq tracker --interval=1m --listen=:8081 /evidence/inbox\n\n")

			fmt.Printf("  %s# Compare two photos%s\n", colorGray, colorReset)
			fmt.Printf("  duplihq compare --auto a.jpg b.jpg\n\n")
		},
	}
}
