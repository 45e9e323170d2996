// Command workrecap fetches a GitHub Enterprise user's activity, normalises
// it into a daily stream, and renders Markdown recaps through a configurable
// LLM provider.
package main

import (
	"log"

	"github.com/yongseopkim/workrecap/cli"
)

func main() {
	if err := cli.RootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
