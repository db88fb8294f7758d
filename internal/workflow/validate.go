package workflow

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/dukerupert/kidscoin/internal/apperr"
	"github.com/dukerupert/kidscoin/internal/model"
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		_, err := model.ParseCategory(fl.Field().String())
		return err == nil
	})
	v.RegisterValidation("username", func(fl validator.FieldLevel) bool {
		return usernamePattern.MatchString(fl.Field().String())
	})
	return v
}

// fieldMessages maps "Struct.Field.tag" to the message shown on the form.
var fieldMessages = map[string]string{
	"NewTask.Title.required":           "Preencha o título da tarefa",
	"NewTask.CoinValue.gt":             "Valor de moedas deve ser maior que zero",
	"NewTask.XPValue.gt":               "Valor de XP deve ser maior que zero",
	"NewTask.Category.category":        "Selecione uma categoria válida",
	"NewTask.ChildrenIDs.min":          "Selecione pelo menos uma criança",
	"NewReward.Name.required":          "Preencha o nome da recompensa",
	"NewReward.CoinCost.gt":            "Custo deve ser maior que zero",
	"NewChild.FullName.required":       "Preencha o nome da criança",
	"NewChild.Username.required":       "Preencha o username",
	"NewChild.Username.min":            "Username deve ter pelo menos 3 caracteres",
	"NewChild.Username.username":       "Username pode conter apenas letras, números, - e _",
	"NewChild.Age.gte":                 "Idade inválida",
	"NewChild.PIN.required":            "Preencha o PIN",
	"NewChild.PIN.len":                 "O PIN deve ter 4 dígitos",
	"NewChild.PIN.numeric":             "O PIN deve conter apenas números",
	"NewChild.AvatarURL.url":           "URL do avatar inválida",
	"Registration.Email.required":      "Preencha o email",
	"Registration.Email.email":         "Email inválido",
	"Registration.Password.required":   "Preencha a senha",
	"Registration.FullName.required":   "Preencha seu nome",
	"Registration.FamilyName.required": "Preencha o nome da família",
	"Credentials.Identifier.required":  "Preencha todos os campos",
	"Credentials.Secret.required":      "Preencha todos os campos",
}

// Check runs struct validation and reports the first failing field as a
// validation error with its form message.
func Check(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return apperr.Wrap(apperr.KindValidation, "", err)
	}
	fe := verrs[0]
	ns := fe.StructNamespace()
	if i := strings.Index(ns, "["); i >= 0 {
		ns = ns[:i]
	}
	if msg, ok := fieldMessages[ns+"."+fe.Tag()]; ok {
		return apperr.Wrap(apperr.KindValidation, msg, err)
	}
	return apperr.Wrap(apperr.KindValidation, "Campo inválido: "+fe.Field(), err)
}

// ChildPINLength is the fixed length of a child's login PIN.
const ChildPINLength = 4

// SanitizePIN is the PIN field's input filter: digits only, at most four.
func SanitizePIN(input string) string {
	var b strings.Builder
	for _, c := range input {
		if c < '0' || c > '9' {
			continue
		}
		if b.Len() == ChildPINLength {
			break
		}
		b.WriteRune(c)
	}
	return b.String()
}

func isDigits(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

// ParentCredentials builds the email/password login.
func ParentCredentials(email, password string) (model.Credentials, error) {
	c := model.Credentials{Identifier: strings.TrimSpace(email), Secret: password}
	if err := Check(c); err != nil {
		return model.Credentials{}, err
	}
	return c, nil
}

// ChildCredentials builds the username/PIN login. The PIN must already be
// exactly four digits; input that is not is refused rather than corrected.
func ChildCredentials(username, pin string) (model.Credentials, error) {
	c := model.Credentials{Identifier: strings.TrimSpace(username), Secret: pin}
	if err := Check(c); err != nil {
		return model.Credentials{}, err
	}
	if !isDigits(pin) {
		return model.Credentials{}, apperr.Validation("O PIN deve conter apenas números")
	}
	if len(pin) != ChildPINLength {
		return model.Credentials{}, apperr.Validation("O PIN deve ter 4 dígitos")
	}
	return c, nil
}

// PrepareTask trims the free-text fields and validates a new task.
func PrepareTask(in model.NewTask) (model.NewTask, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	if err := Check(in); err != nil {
		return model.NewTask{}, err
	}
	if in.Recurrence != nil {
		if err := in.Recurrence.Validate(); err != nil {
			return model.NewTask{}, apperr.Wrap(apperr.KindValidation, "Selecione pelo menos um dia da semana", err)
		}
	}
	return in, nil
}

func PrepareReward(in model.NewReward) (model.NewReward, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Description = strings.TrimSpace(in.Description)
	if err := Check(in); err != nil {
		return model.NewReward{}, err
	}
	return in, nil
}

func PrepareChild(in model.NewChild) (model.NewChild, error) {
	in.FullName = strings.TrimSpace(in.FullName)
	in.Username = strings.TrimSpace(in.Username)
	in.PIN = strings.TrimSpace(in.PIN)
	if err := Check(in); err != nil {
		return model.NewChild{}, err
	}
	return in, nil
}

func PrepareRegistration(in model.Registration) (model.Registration, error) {
	in.Email = strings.TrimSpace(in.Email)
	in.FullName = strings.TrimSpace(in.FullName)
	in.FamilyName = strings.TrimSpace(in.FamilyName)
	if err := Check(in); err != nil {
		return model.Registration{}, err
	}
	return in, nil
}
