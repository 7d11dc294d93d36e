package main

import (
	"fmt"
	"io"
	"time"
)

func printList(w io.Writer, title string, items []string) {
	fmt.Fprintf(w, "%s (%d):\n", title, len(items))
	for _, item := range items {
		fmt.Fprintf(w, "  - %s\n", item)
	}
}

func printSummary(w io.Writer, processed, failed []string, duration time.Duration, cancelled bool) {
	printList(w, "Processed", processed)
	printList(w, "Failed", failed)
	if duration > 0 {
		fmt.Fprintf(w, "Duration: %s\n", duration.Round(time.Millisecond))
	}
	if cancelled {
		fmt.Fprintln(w, "Batch cancelled before all files were handled")
	}
}
