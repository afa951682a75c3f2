package main

import (
	"context"
	"fmt"
	"text/tabwriter"
)

func (cli *commandLine) stats() error {
	ctx := context.Background()
	ov, err := cli.analyticsSvc.Overview(ctx)
	if err != nil {
		return err
	}
	met, err := cli.analyticsSvc.Metrics(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(cli.out, 0, 4, 2, ' ', 0)
	fmt.Fprintf(w, "users\t%d\n", ov.Users)
	fmt.Fprintf(w, "lessons\t%d\n", ov.Lessons)
	fmt.Fprintf(w, "comments\t%d\n", ov.Comments)
	fmt.Fprintf(w, "completed\t%d\n", ov.Completed)
	fmt.Fprintf(w, "average completion rate\t%.1f%%\n", met.AverageCompletionRate)
	fmt.Fprintf(w, "completions per user\t%.1f\n", met.CompletionsPerUser)
	fmt.Fprintf(w, "comments per user\t%.1f\n", met.CommentsPerUser)
	return w.Flush()
}
