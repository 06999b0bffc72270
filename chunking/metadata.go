package chunking

import "strings"

// Metadata describes a procedure document. Fields missing from the document are empty.
type Metadata struct {
	Source          string   `json:"source"`
	Title           string   `json:"title"`
	DocumentID      string   `json:"document_id"`
	PublicationDate string   `json:"publication_date"`
	CountryCodes    []string `json:"country_codes,omitempty"`
	Authors         []string `json:"authors,omitempty"`
}

// ExtractMetadata reads the header and imprint metadata of a procedure document.
func ExtractMetadata(doc *Document) Metadata {
	meta := Metadata{Source: doc.Source}
	if doc.Root == nil {
		return meta
	}

	if header := doc.Root.Find("kopfdaten"); header != nil {
		meta.Title = header.FindText("titel")
		if subtitle := header.FindText("untertitel"); subtitle != "" {
			meta.Title = strings.TrimSpace(meta.Title + " " + subtitle)
		}
	}

	md := doc.Root.Find("metadaten")
	if md == nil {
		return meta
	}

	meta.DocumentID = md.FindText("metadaten-allgemein/metadatum-bogencode")
	meta.PublicationDate = md.FindText("metadaten-impressum/metadatum-red-datum")

	for _, country := range md.FindAll("metadaten-allgemein/metadatum-laender-id") {
		if code := country.Attr("laender-id"); code != "" {
			meta.CountryCodes = append(meta.CountryCodes, code)
		}
	}

	for _, person := range md.FindAll("metadaten-impressum/metadatum-autoren/person") {
		if person.Find("nname") == nil {
			continue
		}
		parts := make([]string, 0, 3)
		for _, field := range []string{"akgrad", "vname", "nname"} {
			if v := person.FindText(field); v != "" {
				parts = append(parts, v)
			}
		}
		meta.Authors = append(meta.Authors, strings.Join(parts, " "))
	}

	return meta
}
