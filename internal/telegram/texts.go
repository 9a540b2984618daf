package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/LiliaBekrar/VoteReminder/internal/domain"
)

// UI texts in French
const (
	helpText = "Commandes disponibles :\n" +
		"/start HH:MM - Inscrit ou modifie votre rappel quotidien (ex : /start 09:00).\n" +
		"/next - Affiche l'heure du prochain rappel.\n" +
		"/repousser <délai> - Repousse le rappel actuel (ex : /repousser 1h30, /repousser 3m, /repousser 12:45).\n" +
		"/voter - Marque le rappel comme effectué et planifie un rappel dans 1h30.\n" +
		"/stop - Désinscrit et annule vos rappels.\n" +
		"/aide - Affiche ce message d'aide."

	startUsageText     = "Indiquez l'heure de votre rappel quotidien : /start HH:MM (ex : /start 09:00)."
	postponeUsageText  = "Indiquez un délai : /repousser <délai> (ex : /repousser 1h30, /repousser 45m)."
	registeredFmt      = "Vous avez été inscrit avec succès ! Votre rappel quotidien est fixé à %s.\nVotre prochain rappel est prévu pour %s."
	nextFmt            = "Votre prochain rappel est prévu pour : %s."
	notRegisteredText  = "Vous n'êtes pas inscrit pour des rappels. Utilisez /start HH:MM pour vous inscrire."
	stoppedText        = "Votre inscription a été supprimée et vous ne recevrez plus de rappels."
	stopNotRegistered  = "Vous n'êtes pas inscrit pour des rappels."
	postponedFmt       = "Votre rappel a été repoussé à : %s."
	votedFmt           = "Merci d'avoir voté ! Votre prochain rappel est prévu pour %s."
	ackCallbackFmt     = "✅ Prochain rappel à %s."
	snoozeCallbackFmt  = "🔔 Prochain rappel à %s."
	unknownCommandText = "Commande inconnue. Tapez /aide pour la liste des commandes disponibles."
	genericFailureText = "Une erreur est survenue, réessayez plus tard."
	dateTimeLayout     = "02/01 à 15:04:05"
)

// optionsKeyboard renders a notification's options as one inline row:
// links open a URL, actions come back as callback data.
func optionsKeyboard(opts []domain.Option) (tgbotapi.InlineKeyboardMarkup, bool) {
	if len(opts) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	row := make([]tgbotapi.InlineKeyboardButton, 0, len(opts))
	for _, o := range opts {
		if o.URL != "" {
			row = append(row, tgbotapi.NewInlineKeyboardButtonURL(o.Label, o.URL))
			continue
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(o.Label, string(o.Action)))
	}
	return tgbotapi.NewInlineKeyboardMarkup(row), true
}
