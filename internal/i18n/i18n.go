package i18n

import (
	"sort"
	"strings"
	"sync"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/iamwavecut/telegram-motivation-bot/resources"
)

var state = struct {
	translations       map[string]map[string]string // [key][lang][translation]
	availableLanguages []string
}{
	translations:       map[string]map[string]string{},
	availableLanguages: []string{"en"},
}

var initialize sync.Once

func load() {
	initialize.Do(func() {
		raw, err := resources.FS.ReadFile("i18n.yaml")
		if err != nil {
			log.WithError(err).Errorln("cant load translations")
			return
		}
		if err := yaml.Unmarshal(raw, &(state.translations)); err != nil {
			log.WithError(err).Errorln("cant unmarshal translations")
			return
		}
		languages := map[string]struct{}{}
		for _, langs := range state.translations {
			for lang := range langs {
				languages[strings.ToLower(lang)] = struct{}{}
			}
		}
		for lang := range languages {
			if lang != "en" {
				state.availableLanguages = append(state.availableLanguages, lang)
			}
		}
		sort.Strings(state.availableLanguages)
		log.Traceln("languages count:", len(state.availableLanguages))
	})
}

// Get returns the translation of key, or key itself when there is none.
func Get(key, lang string) string {
	load()
	if lang == "en" {
		return key
	}
	if res, ok := state.translations[key][strings.ToUpper(lang)]; ok {
		return res
	}
	log.Traceln(`no "` + lang + `" translation for key "` + key + `"`)
	return key
}
