// Command codeindex is the single binary entrypoint for the indexer CLI.
package main

import "github.com/mvp-joe/codeindex/internal/cli"

func main() {
	cli.Execute()
}
