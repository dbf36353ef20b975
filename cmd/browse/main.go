package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"schooldirectory/internal/config"
	"schooldirectory/internal/directory"
	"schooldirectory/internal/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	addr := flag.String("addr", fmt.Sprintf("http://localhost:%d", cfg.Port), "API base URL")
	query := flag.String("q", "", "search by name, city or address")
	route := flag.String("image-route", cfg.ImageRoute, "public route images are served from")
	placeholder := flag.String("placeholder", cfg.PlaceholderImage, "image shown for schools without one")
	timeout := flag.Duration("timeout", 10*time.Second, "request timeout")
	flag.Parse()

	logger.Init("warn", "console")

	client := directory.NewClient(*addr, *timeout)
	model := directory.NewModel()

	fmt.Println(model.Status())
	if err := model.Load(context.Background(), client); err != nil {
		fmt.Fprintln(os.Stderr, model.Status())
		os.Exit(1)
	}
	model.SetSearchTerm(*query)

	in := bufio.NewReader(os.Stdin)
	shown := 0
	for {
		view := model.View()
		if shown == 0 {
			fmt.Println(model.Status())
			if msg := model.EmptyMessage(); msg != "" {
				fmt.Println(msg)
				return
			}
		}
		for _, s := range view.Displayed[shown:] {
			img := directory.ResolveImagePath(s.Image, *route, *placeholder)
			fmt.Printf("#%-5d %-40s %s, %s\n       %s\n", s.ID, s.Name, s.City, s.State, s.Address)
			fmt.Printf("       %s | %s | %s\n", s.Contact, s.EmailID, img)
		}
		shown = len(view.Displayed)

		if !view.HasMore {
			return
		}
		fmt.Printf("-- %d of %d shown, Enter for more, q to quit -- ", shown, len(view.Filtered))
		line, err := in.ReadString('\n')
		if err != nil && err != io.EOF {
			return
		}
		if strings.TrimSpace(line) == "q" || err == io.EOF {
			return
		}
		model.RevealMore()
	}
}
