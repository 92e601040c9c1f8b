// Command enginecheck asks every configured suggestion backend for a move in
// one position and reports what each answered.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/park285/cheese-board/internal/config"
	"github.com/park285/cheese-board/internal/match"
	"github.com/park285/cheese-board/internal/suggest"
	"github.com/park285/cheese-board/internal/suggest/book"
	"github.com/park285/cheese-board/internal/suggest/cloud"
	"github.com/park285/cheese-board/internal/suggest/uci"
)

const startFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w KQkq - 0 1"

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to a YAML config file")
	fen := flag.String("fen", startFEN, "position to probe")
	timeout := flag.Duration("timeout", 10*time.Second, "per-backend timeout")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	pos, err := match.StandardRules{}.FromFEN(*fen)
	if err != nil {
		log.Fatalf("bad fen: %v", err)
	}
	legal := pos.LegalMoves()

	ok := color.New(color.FgGreen).SprintFunc()
	bad := color.New(color.FgRed).SprintFunc()
	skip := color.New(color.FgYellow).SprintFunc()

	var backends []suggest.Named
	if path := strings.TrimSpace(cfg.Engine.BookPath); path != "" {
		b, err := book.Open(path, book.WithMinWeight(uint16(cfg.Engine.BookMinWeight)))
		if err != nil {
			fmt.Printf("%s book: %v\n", bad("FAIL"), err)
		} else {
			backends = append(backends, suggest.Named{Name: "book", Suggester: b})
		}
	} else {
		fmt.Printf("%s book: CHESS_POLYGLOT_BOOK_PATH not set\n", skip("SKIP"))
	}
	if path := strings.TrimSpace(cfg.Engine.StockfishPath); path != "" {
		engine, err := uci.NewEngine(uci.PoolConfig{
			BinaryPath: path,
			Options:    uci.Options{Threads: cfg.Engine.Threads, HashMB: cfg.Engine.HashMB},
			Capacity:   1,
		}, uci.Limits{Depth: cfg.Engine.Depth, MoveTimeMillis: cfg.Engine.MoveTimeMillis})
		if err != nil {
			fmt.Printf("%s uci: %v\n", bad("FAIL"), err)
		} else {
			defer engine.Close()
			backends = append(backends, suggest.Named{Name: "uci", Suggester: engine})
		}
	} else {
		fmt.Printf("%s uci: STOCKFISH_PATH not set\n", skip("SKIP"))
	}
	if base := strings.TrimSpace(cfg.Cloud.BaseURL); base != "" {
		backends = append(backends, suggest.Named{Name: "cloud", Suggester: cloud.NewClient(base, cloud.WithTimeout(cfg.CloudTimeout()))})
	} else {
		fmt.Printf("%s cloud: CHESS_CLOUD_EVAL_URL not set\n", skip("SKIP"))
	}

	failed := 0
	for _, b := range backends {
		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		start := time.Now()
		mv, err := b.Suggest(ctx, *fen)
		cancel()
		elapsed := time.Since(start).Round(time.Millisecond)
		if err != nil {
			failed++
			fmt.Printf("%s %s: %v (%s)\n", bad("FAIL"), b.Name, err, elapsed)
			continue
		}
		if !isLegal(mv, legal) {
			failed++
			fmt.Printf("%s %s: illegal move %q (%s)\n", bad("FAIL"), b.Name, mv, elapsed)
			continue
		}
		fmt.Printf("%s %s: %s (%s)\n", ok("OK"), b.Name, mv, elapsed)
	}
	if failed > 0 {
		return 1
	}
	return 0
}

func isLegal(raw string, legal []match.Move) bool {
	mv, err := match.ParseUCI(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	for _, l := range legal {
		if l == mv {
			return true
		}
	}
	return false
}
