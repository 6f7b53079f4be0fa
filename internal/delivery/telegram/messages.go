// messages.go contains the user-facing message templates.

package telegram

const (
	msgWelcome = `Welcome! 👋

Send me any English word or phrase and I will add it to your vocabulary with definitions and examples.

Every day I remind you of the words you are responsible for reviewing, following your reminder schedule.

Use /help to see everything I can do.`

	msgHelp = `Send me a word or phrase to add it to your vocabulary.

/words — your full vocabulary
/today — words added today
/this_week — words added this week
/responsibility — words to review today
/stats — totals and streak
/reminder — your review schedule
/set_reminders a b c d e — set the five review offsets in days
/define word — look a word up without saving it
/tr word — translation only
/pronounce [-slow] text — hear it spoken
/essay [-story|-essay|-paragraph] [-short|-medium|-long] [-A1..C2] [-slow] [theme] — a text from today's review words, with audio
/delete word — remove a word from your vocabulary
/stop — pause daily reminders`

	msgStopped           = "Daily reminders are paused. Your vocabulary is kept; send /start to resume."
	msgDigestHeader      = "📚 Your words to review today:"
	msgNothingDue        = "Nothing to review today. 🎉"
	msgNoSchedule        = "You have no review schedule yet. Set one with /set_reminders, for example: /set_reminders 0 1 3 6 14"
	msgNoWords           = "Your vocabulary is empty. Send me a word to get started!"
	msgUnknownWord       = "I could not find that in the dictionary. Check the spelling and try again."
	msgWordDeleted       = "Removed. You will no longer be reminded of it."
	msgNotInVocabulary   = "That word is not in your vocabulary."
	msgNoTranslation     = "No translation found for that word."
	msgSetRemindersUsage = "Usage: /set_reminders a b c d e — five non-negative day offsets, for example: /set_reminders 0 1 3 6 14"
	msgRemindersUpdated  = "Review schedule updated."
	msgEssayUnavailable  = "I could not write an essay right now. Please try again later."
	msgAudioUnavailable  = "I could not produce audio right now. Please try again later."
	msgDictionaryBusy    = "The dictionary is not responding right now. Please try again in a minute."
	msgInternalError     = "Something went wrong. Please try again later."
	msgUnknownCommand    = "Unknown command. Use /help to see what I can do."
	msgPronounceUsage    = "Usage: /pronounce [-slow] some text"
)
