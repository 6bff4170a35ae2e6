package i18n

import (
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/javierhorta/mashi/internal/infra"
	"github.com/javierhorta/mashi/resources"
)

var state = struct {
	translations  map[string]map[string]string
	loaded        map[string]bool
	resourcesPath string
}{
	translations:  make(map[string]map[string]string),
	loaded:        make(map[string]bool),
	resourcesPath: infra.GetResourcesPath("i18n"),
}

func load(lang string) {
	if "en" == lang {
		return
	}

	data, err := resources.FS.ReadFile(state.resourcesPath + "/" + fmt.Sprintf("%s.yml", lang))
	if err != nil {
		log.WithError(err).Errorln("cant load i18n")
		return
	}
	translations := make(map[string]string)
	if err := yaml.Unmarshal(data, &translations); err != nil {
		log.WithError(err).Errorln("cant unmarshal i18n")
		return
	}
	state.translations[lang] = translations
	state.loaded[lang] = true
}

func Get(key, lang string) string {
	if "en" == lang {
		return key
	}
	if !state.loaded[lang] {
		load(lang)
	}
	if res, ok := state.translations[lang][key]; ok {
		return res
	}
	log.Tracef(`no translation for key %q`, key)
	return key
}

func GetLanguagesList() []string {
	entries, err := resources.FS.ReadDir(state.resourcesPath)
	if err != nil {
		log.WithError(err).Errorln("cant list i18n resources")
		return []string{"en"}
	}
	languages := []string{"en"}
	for _, entry := range entries {
		name := entry.Name()
		if strings.HasSuffix(name, ".yml") {
			languages = append(languages, strings.TrimSuffix(name, ".yml"))
		}
	}
	return languages
}
