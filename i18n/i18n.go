// Package i18n holds the user-facing messages returned by the API.
package i18n

import (
	"strings"

	"praytogether-backend/models"
)

// Key identifies a message
type Key string

const (
	ValidationFailed   Key = "validationFailed"
	ReasonTooShort     Key = "reasonTooShort"
	LanguageRequired   Key = "languageRequired"
	GenerationFailed   Key = "generationFailed"
	NoPlanGenerated    Key = "noPlanGenerated"
	SavePlanFailed     Key = "savePlanFailed"
	SaveProfileFailed  Key = "saveProfileFailed"
	ProfileNotFound    Key = "profileNotFound"
	LoginFailed        Key = "loginFailed"
	SignupFailed       Key = "signupFailed"
	EmailTaken         Key = "emailTaken"
	Unauthorized       Key = "unauthorized"
	PlanSaved          Key = "planSaved"
	PlanGenerated      Key = "planGenerated"
	InternalError      Key = "internalError"
	OAuthFailed        Key = "oauthFailed"
	OAuthUnavailable   Key = "oauthUnavailable"
	InvalidRequest     Key = "invalidRequest"
	FileTooLarge       Key = "fileTooLarge"
	InvalidFileType    Key = "invalidFileType"
	NotFound           Key = "notFound"
	StorageUnavailable Key = "storageUnavailable"
	FieldRequired      Key = "fieldRequired"
	FieldInvalid       Key = "fieldInvalid"
	VersionMismatch    Key = "versionMismatch"
)

var translations = map[models.Locale]map[Key]string{
	models.LocaleEnglish: {
		ValidationFailed:   "Some fields are invalid.",
		ReasonTooShort:     "Please describe your prayer reason in at least 10 characters.",
		LanguageRequired:   "Please select a language.",
		GenerationFailed:   "An unexpected error occurred while creating your prayer plan. Please try again later.",
		NoPlanGenerated:    "Failed to generate a prayer plan. The AI might not have found relevant content. Please try rephrasing your reason.",
		SavePlanFailed:     "Could not save the plan. Storage might be unavailable or full.",
		SaveProfileFailed:  "Could not save your profile. Please try again.",
		ProfileNotFound:    "No profile found. Please complete your profile.",
		LoginFailed:        "Login failed. Please check your credentials.",
		SignupFailed:       "Signup failed. Please try again.",
		EmailTaken:         "An account with this email already exists.",
		Unauthorized:       "You must be logged in to do that.",
		PlanSaved:          "Your prayer plan for \"{reason}\" has been saved.",
		PlanGenerated:      "Your prayer plan for \"{reason}\" has been generated!",
		InternalError:      "Something went wrong. Please try again.",
		OAuthFailed:        "Sign-in with Google failed. Please try again.",
		OAuthUnavailable:   "Sign-in with Google is not configured.",
		InvalidRequest:     "The request could not be read.",
		FileTooLarge:       "The file is too large.",
		InvalidFileType:    "File type not allowed. Allowed types: JPEG, PNG, GIF, WEBP.",
		NotFound:           "Not found.",
		StorageUnavailable: "Storage is unavailable. Your data was not saved.",
		FieldRequired:      "{field} is required.",
		FieldInvalid:       "{field} is invalid.",
		VersionMismatch:    "The Bible version does not match the selected language.",
	},
	models.LocaleSpanish: {
		ValidationFailed:   "Algunos campos no son válidos.",
		ReasonTooShort:     "Describe tu motivo de oración con al menos 10 caracteres.",
		LanguageRequired:   "Selecciona un idioma.",
		GenerationFailed:   "Ocurrió un error inesperado al crear tu plan de oración. Inténtalo de nuevo más tarde.",
		NoPlanGenerated:    "No se pudo generar un plan de oración. Intenta reformular tu motivo.",
		SavePlanFailed:     "No se pudo guardar el plan. El almacenamiento podría no estar disponible o estar lleno.",
		SaveProfileFailed:  "No se pudo guardar tu perfil. Inténtalo de nuevo.",
		ProfileNotFound:    "No se encontró un perfil. Completa tu perfil.",
		LoginFailed:        "Error al iniciar sesión. Verifica tus credenciales.",
		SignupFailed:       "Error al registrarse. Inténtalo de nuevo.",
		EmailTaken:         "Ya existe una cuenta con este correo.",
		Unauthorized:       "Debes iniciar sesión para hacer eso.",
		PlanSaved:          "Tu plan de oración para \"{reason}\" ha sido guardado.",
		PlanGenerated:      "¡Tu plan de oración para \"{reason}\" ha sido generado!",
		InternalError:      "Algo salió mal. Inténtalo de nuevo.",
		OAuthFailed:        "Error al iniciar sesión con Google. Inténtalo de nuevo.",
		OAuthUnavailable:   "El inicio de sesión con Google no está configurado.",
		InvalidRequest:     "No se pudo leer la solicitud.",
		FileTooLarge:       "El archivo es demasiado grande.",
		InvalidFileType:    "Tipo de archivo no permitido. Tipos permitidos: JPEG, PNG, GIF, WEBP.",
		NotFound:           "No encontrado.",
		StorageUnavailable: "El almacenamiento no está disponible. Tus datos no se guardaron.",
		FieldRequired:      "{field} es obligatorio.",
		FieldInvalid:       "{field} no es válido.",
		VersionMismatch:    "La versión de la Biblia no corresponde al idioma seleccionado.",
	},
}

// T returns the message for key in locale, falling back to English and then
// to the key itself. params replace "{name}" placeholders.
func T(locale models.Locale, key Key, params ...string) string {
	text, ok := translations[locale][key]
	if !ok {
		text, ok = translations[models.LocaleEnglish][key]
	}
	if !ok {
		text = string(key)
	}
	for i := 0; i+1 < len(params); i += 2 {
		text = strings.ReplaceAll(text, "{"+params[i]+"}", params[i+1])
	}
	return text
}
