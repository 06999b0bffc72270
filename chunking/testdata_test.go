package chunking

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const schemaDocument = `<?xml version="1.0" encoding="UTF-8"?>
<bogen>
  <kopfdaten>
    <titel>Magenspiegelung</titel>
    <untertitel>Gastroskopie</untertitel>
  </kopfdaten>
  <metadaten>
    <metadaten-allgemein>
      <metadatum-bogencode>IP07</metadatum-bogencode>
      <metadatum-laender-id laender-id="DE"/>
      <metadatum-laender-id laender-id="AT"/>
    </metadaten-allgemein>
    <metadaten-impressum>
      <metadatum-red-datum>2024-03-01</metadatum-red-datum>
      <metadatum-autoren>
        <person><akgrad>Prof. Dr. med.</akgrad><vname>Anna</vname><nname>Muster</nname></person>
        <person><vname>Ohne</vname></person>
      </metadatum-autoren>
    </metadaten-impressum>
  </metadaten>
  <infoteil>
    <einleitung>
      <a>Sehr geehrte Patientin, sehr geehrter Patient, bitte lesen Sie diese Informationen.</a>
    </einleitung>
    <risikokatalog>
      <titel>Risiken und mögliche Komplikationen</titel>
      <risikogruppe>
        <risiko>Blutungen (3) können auftreten und müssen eventuell gestillt werden.</risiko>
        <risiko>Kurz.</risiko>
        <risiko>Allergische Reaktionen [Lit. 4] auf Medikamente sind sehr selten.</risiko>
      </risikogruppe>
    </risikokatalog>
    <verhaltenshinweise>
      <a>Bitte bleiben Sie nüchtern <li>mindestens sechs Stunden vor der Untersuchung</li> und trinken Sie nichts.</a>
    </verhaltenshinweise>
    <leer><titel>Nichts</titel></leer>
  </infoteil>
</bogen>`

const genericDocument = `<html><body>
<p>Dieser einleitende Absatz steht vor der ersten Überschrift im Dokument.</p>
<h1>Risiken</h1>
<p>Nach dem Eingriff kann es zu Blutungen an der Einstichstelle kommen.</p>
<div><h2>Verhalten</h2>
<p>Bitte verzichten Sie nach dem Eingriff 24 Stunden auf das Autofahren.</p></div>
<h2>Risiken</h2>
<p>Sehr selten kommt es zu allergischen Reaktionen auf das Betäubungsmittel.</p>
<h3>   </h3>
<p>Auch Infektionen der Haut sind in seltenen Fällen beobachtet worden.</p>
</body></html>`

func mustReadDocument(t *testing.T, xmlText, source string) *Document {
	t.Helper()
	doc, err := ReadDocument(strings.NewReader(xmlText), source)
	require.NoError(t, err)
	return doc
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
