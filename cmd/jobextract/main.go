// Command jobextract runs the job extraction pipeline locally: page text, extraction
// and the envelope schemas, with the same configuration the Lambdas use.
package main

import "os"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
