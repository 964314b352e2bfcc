package codec

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/google/uuid"

	"davsync/record"
)

// BuildContact synthesizes a minimal vCard 3.0 object for a new contact.
// Returns the serialized card and the generated UID.
func BuildContact(input record.CreateContactInput) (raw string, uid string, err error) {
	if input.FormattedName == "" {
		return "", "", fmt.Errorf("contact formatted name is required")
	}

	uid = uuid.New().String()

	card := make(vcard.Card)
	card.SetValue(vcard.FieldVersion, VCardV3)
	card.SetValue(vcard.FieldUID, uid)
	card.SetValue(vcard.FieldFormattedName, input.FormattedName)

	given := input.Given.OrElse("")
	family := input.Family.OrElse("")
	if given != "" || family != "" {
		card.AddName(&vcard.Name{GivenName: given, FamilyName: family})
	}
	if org, ok := input.Organization.Get(); ok {
		card.SetValue(vcard.FieldOrganization, org)
	}
	for _, email := range input.Emails {
		card.AddValue(vcard.FieldEmail, email)
	}
	for _, phone := range input.Phones {
		card.AddValue(vcard.FieldTelephone, phone)
	}

	raw, err = encodeCard(card)
	if err != nil {
		return "", "", err
	}
	return raw, uid, nil
}

// PatchContact applies an update input onto existing raw vCard text. As with
// events, the decoded card itself is re-serialized so that grouped fields,
// photos, extension properties and the original VERSION survive untouched.
func PatchContact(raw string, input record.UpdateContactInput) (string, error) {
	card, err := vcard.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		return "", fmt.Errorf("failed to parse existing vcard object: %w", err)
	}

	if v, ok := input.FormattedName.Get(); ok {
		card.SetValue(vcard.FieldFormattedName, v)
	}
	if input.Given.IsPresent() || input.Family.IsPresent() {
		patchName(card, input)
	}
	if v, ok := input.Organization.Get(); ok {
		card.SetValue(vcard.FieldOrganization, v)
	}
	if emails, ok := input.Emails.Get(); ok {
		replaceValues(card, vcard.FieldEmail, emails)
	}
	if phones, ok := input.Phones.Get(); ok {
		replaceValues(card, vcard.FieldTelephone, phones)
	}

	return encodeCard(card)
}

// patchName merges the given/family changes into the existing structured
// name, keeping any components the input does not touch.
func patchName(card vcard.Card, input record.UpdateContactInput) {
	name := card.Name()
	if name == nil {
		name = &vcard.Name{}
	}
	if v, ok := input.Given.Get(); ok {
		name.GivenName = v
	}
	if v, ok := input.Family.Get(); ok {
		name.FamilyName = v
	}

	value := strings.Join([]string{
		name.FamilyName,
		name.GivenName,
		name.AdditionalName,
		name.HonorificPrefix,
		name.HonorificSuffix,
	}, ";")

	if name.Field != nil {
		name.Field.Value = value
	} else {
		card.Set(vcard.FieldName, &vcard.Field{Value: value})
	}
}

// replaceValues swaps every field of one kind for plain new values.
func replaceValues(card vcard.Card, key string, values []string) {
	delete(card, key)
	for _, v := range values {
		card.AddValue(key, v)
	}
}

func encodeCard(card vcard.Card) (string, error) {
	var buf bytes.Buffer
	if err := vcard.NewEncoder(&buf).Encode(card); err != nil {
		return "", fmt.Errorf("failed to encode vcard: %w", err)
	}
	return buf.String(), nil
}
