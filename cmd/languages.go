/*
Copyright © 2025 Al Zakaria <alzakaria14@gmail.com>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var languagesService string

var languagesCmd = &cobra.Command{
	Use:   "languages",
	Short: "List language codes supported by the translation service",
	RunE: func(cmd *cobra.Command, args []string) error {
		name := languagesService
		if name == "" {
			name = viper.GetString("service.name")
		}

		svc, err := buildService(name, serviceConfigFromViper())
		if err != nil {
			return err
		}

		codes, err := svc.SupportedLanguages(context.Background())
		if err != nil {
			return fmt.Errorf("failed to list languages: %w", err)
		}

		for _, code := range codes {
			fmt.Println(code)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(languagesCmd)

	languagesCmd.Flags().StringVar(&languagesService, "service", "", "Translation service (defaults to the configured one)")
}
