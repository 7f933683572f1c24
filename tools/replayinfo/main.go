package main

import (
	"encoding/json"
	"fishgame-server/internal/engine"
	"fishgame-server/internal/infrastructure/storage"
	"fishgame-server/pkg/logger"
	"fmt"
	"os"
	"strconv"
	"time"
)

func main() {
	if len(os.Args) < 3 {
		printHelp()
		return
	}
	logger.Init()

	if os.Args[1] == "time" {
		ms, err := strconv.ParseInt(os.Args[2], 10, 64)
		if err != nil {
			fmt.Printf("Invalid timestamp: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(time.UnixMilli(ms).UTC().Format(time.RFC3339))
		return
	}

	rs, err := storage.LoadFile(os.Args[2])
	if err != nil {
		fmt.Printf("Cannot read replay: %v\n", err)
		os.Exit(1)
	}

	switch os.Args[1] {
	case "info":
		fmt.Printf("seed:      %d\n", rs.Seed)
		fmt.Printf("recorded:  %s\n", time.Unix(rs.Timestamp, 0).UTC().Format(time.RFC3339))
		fmt.Printf("grid:      %dx%d, %d rocks, %d falling\n", rs.Width, rs.Height, rs.NumRocks, rs.NumFallingRocks)
		fmt.Printf("rules:     %s\n", rs.Rules)
		fmt.Printf("result:    score %d in %d steps\n", rs.FinalScore, rs.FinalSteps)
		fmt.Printf("actions:   %d\n", len(rs.Actions))
	case "actions":
		for i, a := range rs.Actions {
			fmt.Printf("%5d  step %-5d %-10s %s\n", i, a.Step, a.Action, string(a.Payload))
		}
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rs); err != nil {
			fmt.Printf("Encode failed: %v\n", err)
			os.Exit(1)
		}
	case "verify":
		g, err := engine.Playback(rs)
		if err != nil {
			fmt.Printf("Playback failed: %v\n", err)
			os.Exit(1)
		}
		ok := g.Score == rs.FinalScore && g.StepsTaken == rs.FinalSteps
		fmt.Printf("replayed: score %d in %d steps, matches recording: %v\n", g.Score, g.StepsTaken, ok)
		if !ok {
			os.Exit(2)
		}
	default:
		printHelp()
	}
}

func printHelp() {
	fmt.Println(`Replay Info - просмотр файлов реплеев .fgrp
Commands:
  info <file>       - заголовок: сид, сетка, правила, итог
  actions <file>    - список записанных действий
  json <file>       - весь реплей в JSON
  verify <file>     - проиграть реплей и сверить итог с записью
  time <unix_ms>    - перевести метку времени из таблицы рекордов в RFC3339`)
}
