package telegram

import (
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/isnadmansour/IsnadTasks/internal/domain"
)

// Operator-facing copy. The field agents work in Arabic.
const (
	msgWelcome               = "أهلاً بك في بوت مهام إسناد 👋\nاضغط الزر لاستلام مهمتك."
	msgNotMember             = "عذراً، هذا البوت متاح لأعضاء مجموعة إسناد فقط."
	msgMembershipUnavailable = "تعذر التحقق من العضوية، حاول مرة أخرى لاحقاً."
	msgNoTasks               = "لا توجد مهام متاحة حالياً، حاول لاحقاً. 🙏"
	msgNoActiveTask          = "اختر مهمة أولاً من زر «مهمة جديدة». 🚀"
	msgNoAccounts            = "لا توجد حسابات مستهدفة لهذه المهمة حالياً."
	msgInternalError         = "حدث خطأ غير متوقع، حاول مرة أخرى."

	buttonNewTask      = "مهمة جديدة 🚀"
	buttonMoreAccounts = "حسابات أخرى 🔄"
)

func newTaskKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonNewTask, callbackNewTask),
		),
	)
}

func taskKeyboard() tgbotapi.InlineKeyboardMarkup {
	return tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonMoreAccounts, callbackMoreAccounts),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(buttonNewTask, callbackNewTask),
		),
	)
}

func renderTask(task domain.Task, accounts []domain.TargetAccount) string {
	var sb strings.Builder
	sb.WriteString("🔗 رابط المهمة:\n")
	sb.WriteString(task.URL)
	sb.WriteString("\n\n")
	sb.WriteString(renderAccounts(accounts))
	return sb.String()
}

// renderAccounts lists the dispensed accounts. Rows without an account id
// keep their slot in the dispense but are not worth showing.
func renderAccounts(accounts []domain.TargetAccount) string {
	var sb strings.Builder
	sb.WriteString("🎯 الحسابات المستهدفة:\n")

	shown := 0
	for i, account := range accounts {
		if !account.Renderable() {
			continue
		}
		shown++

		sb.WriteString(fmt.Sprintf("\n%d. %s\n", i+1, account.Name))
		if account.Link != "" {
			sb.WriteString(account.Link)
			sb.WriteString("\n")
		}
	}

	if shown == 0 {
		return msgNoAccounts
	}
	return strings.TrimRight(sb.String(), "\n")
}
