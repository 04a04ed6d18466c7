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
	"fmt"

	"github.com/spf13/viper"

	"github.com/alzakaria14/translator-program/internal/translator"
)

// buildService constructs the named translation service from CLI parameters.
func buildService(name string, cfg translator.ServiceConfig) (translator.TranslationService, error) {
	switch name {
	case "libretranslate":
		return translator.NewLibreTranslateService(cfg.BaseURL, cfg.APIKey, cfg.Timeout), nil
	case "google":
		return translator.NewGoogleService(cfg.Credentials), nil
	case "systran":
		return translator.NewSystranService(cfg.APIKey, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown service: %s (supported: libretranslate, google, systran)", name)
	}
}

// serviceConfigFromViper collects the bound service settings, so flags,
// environment variables, and the config file all feed the same struct.
func serviceConfigFromViper() translator.ServiceConfig {
	return translator.ServiceConfig{
		Credentials: viper.GetString("service.credentials"),
		APIKey:      viper.GetString("service.api_key"),
		BaseURL:     viper.GetString("service.base_url"),
		Timeout:     viper.GetDuration("service.timeout"),
	}
}
