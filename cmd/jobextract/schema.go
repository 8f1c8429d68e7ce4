package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Smackface/go-job-extractor/internal/handler"
)

var schemaName string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schemas of the event and response envelopes",
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVar(&schemaName, "name", "", "print only this schema (one of event, event_body, response, error_body, job_record)")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, args []string) error {
	var doc any = handler.Schemas()
	if schemaName != "" {
		s, err := handler.LookupSchema(schemaName)
		if err != nil {
			return err
		}
		doc = s
	}

	out, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode schema: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
