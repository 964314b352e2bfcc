package codec

import (
	"strings"

	"github.com/emersion/go-vcard"
	"github.com/samber/mo"

	"davsync/record"
)

// vCard versions the service recognizes. Version detection falls back to
// 3.0, which is what most CardDAV servers still emit when the property is
// missing.
const (
	VCardV3 = "3.0"
	VCardV4 = "4.0"
)

// Contact parses one vCard object, skipping malformed input the same way
// Event does.
func (p *Parser) Contact(raw, href, etag string) mo.Option[record.Contact] {
	card, err := vcard.NewDecoder(strings.NewReader(raw)).Decode()
	if err != nil {
		p.logger.Warn("skipping unparseable vcard object", "url", href, "error", err)
		return mo.None[record.Contact]()
	}

	uid := card.Value(vcard.FieldUID)
	if uid == "" {
		p.logger.Warn("skipping vcard object without UID", "url", href)
		return mo.None[record.Contact]()
	}

	version := card.Value(vcard.FieldVersion)
	if version != VCardV4 {
		version = VCardV3
	}

	contact := record.Contact{
		UID:          uid,
		Emails:       append([]string{}, card.Values(vcard.FieldEmail)...),
		Phones:       append([]string{}, card.Values(vcard.FieldTelephone)...),
		Organization: card.Value(vcard.FieldOrganization),
		Version:      version,
		URL:          href,
		ETag:         etag,
		Raw:          raw,
	}

	contact.Name.Formatted = card.PreferredValue(vcard.FieldFormattedName)
	if name := card.Name(); name != nil {
		contact.Name.Family = name.FamilyName
		contact.Name.Given = name.GivenName
	}

	return mo.Some(contact)
}
