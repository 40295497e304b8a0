package sanitize

import "testing"

func TestDocumentText(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text keeps layout",
			in:   "DESCRIPCION: llamar\r\n----------\rSINIESTROS",
			want: "DESCRIPCION: llamar\n----------\nSINIESTROS",
		},
		{
			name: "block tags become newlines",
			in:   "<div>OBSERVACIONES MANUALES: 612 345 678</div><p>TELEF-1: 600111222<br/>x</p>",
			want: "OBSERVACIONES MANUALES: 612 345 678\nTELEF-1: 600111222\nx\n",
		},
		{
			name: "cells and entities",
			in:   "<tr><td>TELEF-1:</td><td>612&nbsp;345&nbsp;678</td></tr>",
			want: "TELEF-1: 612\u00a0345\u00a0678 \n",
		},
		{
			name: "scripts dropped",
			in:   "<script>var t = '699999999';</script>DESCRIPCION: a",
			want: "DESCRIPCION: a",
		},
		{
			name: "entities in plain text",
			in:   "DESCRIPCI&Oacute;N &amp; notas",
			want: "DESCRIPCIÓN & notas",
		},
	}

	for _, tc := range cases {
		if got := DocumentText(tc.in); got != tc.want {
			t.Errorf("%s: DocumentText = %q, want %q", tc.name, got, tc.want)
		}
	}
}

func TestStripHTML(t *testing.T) {
	if got := StripHTML("  <b>Allianz</b> &lt;i&gt;x&lt;/i&gt; "); got != "Allianz x" {
		t.Fatalf("unexpected result %q", got)
	}
}
