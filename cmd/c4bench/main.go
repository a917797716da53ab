// c4bench is a solver diagnostic tool: it replays a test-case file of
// "<moves> <eval>" lines and reports mismatches, node counts and timing.
// See: https://github.com/PascalPons/connect4/tree/master/test-cases.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/mpalmer/c4solver/pkg/board"
	"github.com/mpalmer/c4solver/pkg/book"
	"github.com/mpalmer/c4solver/pkg/search"
	"github.com/seekerror/logw"
)

var (
	cases     = flag.String("cases", "", "Test-case file: lines of '<moves 1..7> <eval>'")
	bookPath  = flag.String("book", "", "Opening book blob (5-byte records, see pkg/book)")
	tableBits = flag.Uint("table-bits", 23, "Transposition table size, as log2 slot count")
)

func main() {
	ctx := context.Background()
	flag.Parse()

	if *cases == "" {
		logw.Exitf(ctx, "-cases is required")
	}

	var bk *book.Book
	if *bookPath != "" {
		blob, err := os.ReadFile(*bookPath)
		if err != nil {
			logw.Exitf(ctx, "Failed to read book %v: %v", *bookPath, err)
		}
		bk, err = book.Load(blob)
		if err != nil {
			logw.Exitf(ctx, "Failed to load book %v: %v", *bookPath, err)
		}
	}

	f, err := os.Open(*cases)
	if err != nil {
		logw.Exitf(ctx, "Failed to open %v: %v", *cases, err)
	}
	defer f.Close()

	var total, failed int
	var nodes uint64
	start := time.Now()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		moves, want, err := parseCase(line)
		if err != nil {
			logw.Exitf(ctx, "Invalid test case %q: %v", line, err)
		}

		pos := board.NewPosition()
		for i := 0; i < len(moves); i++ {
			col, err := board.ParseCol(moves[i] - '1' + '0')
			if err != nil {
				logw.Exitf(ctx, "Invalid move %q in case %q: %v", moves[i], line, err)
			}
			if _, err := pos.Make(col); err != nil {
				logw.Exitf(ctx, "Illegal move in case %q: %v", line, err)
			}
		}

		table := search.NewTable(*tableBits)
		n := search.NewNegamax(table, bk)
		got := n.Solve(ctx, pos)
		nodes += n.Nodes()

		total++
		if got != want {
			failed++
			println(fmt.Sprintf("MISMATCH: %v => got %v, want %v", line, got, want))
		}
	}
	if err := scanner.Err(); err != nil {
		logw.Exitf(ctx, "Failed reading %v: %v", *cases, err)
	}

	duration := time.Since(start)
	println(fmt.Sprintf("c4bench,cases=%v,failed=%v,nodes=%v,duration_ms=%v", total, failed, nodes, duration.Milliseconds()))
	if failed > 0 {
		os.Exit(1)
	}
}

// parseCase splits a "<moves> <eval>" test-case line.
func parseCase(line string) (string, int8, error) {
	parts := strings.Fields(line)
	if len(parts) != 2 {
		return "", 0, fmt.Errorf("expected 2 fields, got %d", len(parts))
	}
	eval, err := strconv.ParseInt(parts[1], 10, 8)
	if err != nil {
		return "", 0, fmt.Errorf("invalid eval: %w", err)
	}
	return parts[0], int8(eval), nil
}
