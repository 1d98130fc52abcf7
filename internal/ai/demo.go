package ai

import (
	"fmt"
	"strings"
)

// Demo mode answers locally when no API key is configured, so the app
// stays usable without an OpenAI account.

// DemoTranslation marks the text instead of translating it.
func DemoTranslation(text, targetLanguage string) string {
	return fmt.Sprintf("[Demo: %s] %s", targetLanguage, text)
}

// DemoSubtasks returns exactly five templated subtasks phrased around
// the task title, in Spanish or French when the target language says
// so, otherwise in English.
func DemoSubtasks(title, targetLanguage string) []string {
	switch strings.ToLower(targetLanguage) {
	case "spanish", "español":
		return []string{
			fmt.Sprintf("Investigar e informarse sobre %q", title),
			fmt.Sprintf("Crear un plan o esquema para %q", title),
			"Comenzar a trabajar en los componentes principales",
			"Revisar y probar el trabajo",
			fmt.Sprintf("Completar y finalizar %q", title),
		}
	case "french", "français":
		return []string{
			fmt.Sprintf("Rechercher et s'informer sur %q", title),
			fmt.Sprintf("Créer un plan ou un schéma pour %q", title),
			"Commencer à travailler sur les composants principaux",
			"Réviser et tester le travail",
			fmt.Sprintf("Terminer et finaliser %q", title),
		}
	default:
		return []string{
			fmt.Sprintf("Research and gather information about %q", title),
			fmt.Sprintf("Create a plan or outline for %q", title),
			"Begin working on the main components",
			"Review and test the work",
			fmt.Sprintf("Complete and finalize %q", title),
		}
	}
}
