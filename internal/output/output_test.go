package output

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/klytics/sheetkit/internal/palette"
	"github.com/klytics/sheetkit/internal/table"
)

func view(t *testing.T, transforms table.Transforms, vs table.ViewState) *table.ViewTable {
	t.Helper()
	d, err := table.NewDataset([]string{"Name", "Age"}, []table.Row{
		{"Name": table.Text("Al"), "Age": table.Number(30)},
		{"Name": table.Text("Bo"), "Age": table.Number(25)},
	})
	if err != nil {
		t.Fatal(err)
	}
	return table.Project(d, transforms, vs)
}

func render(t *testing.T, v *table.ViewTable, opts TableOptions) string {
	t.Helper()
	var buf bytes.Buffer
	if err := RenderTable(&buf, v, opts); err != nil {
		t.Fatalf("RenderTable failed: %v", err)
	}
	return buf.String()
}

func TestRenderTablePlain(t *testing.T) {
	out := render(t, view(t, nil, table.ViewState{}), TableOptions{})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	if len(lines) != 5 {
		t.Fatalf("expected header, rule, 2 rows and footer, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], "#  Name  Age") {
		t.Errorf("unexpected header %q", lines[0])
	}
	if !strings.HasPrefix(lines[2], "1  Al    30") {
		t.Errorf("unexpected first row %q", lines[2])
	}
	if lines[4] != "2 rows" {
		t.Errorf("unexpected footer %q", lines[4])
	}
	if strings.Contains(out, "\x1b[") {
		t.Error("plain output should not contain escape codes")
	}
}

func TestRenderTableSortArrowsAndFooter(t *testing.T) {
	tr := table.Transforms{}.SetSort("Age", table.Asc)
	v := view(t, tr, table.ViewState{Sort: &table.SortKey{Column: "Age", Direction: table.Asc}, Search: "bo"})
	out := render(t, v, TableOptions{})

	if !strings.Contains(out, "Age "+ascArrow) {
		t.Errorf("expected ascending arrow in header:\n%s", out)
	}
	if !strings.Contains(out, "1 of 2 rows") {
		t.Errorf("expected filtered footer:\n%s", out)
	}

	desc := table.ViewColumn{Label: "Age", Sort: table.Desc}
	if Label(desc) != "Age "+descArrow {
		t.Errorf("unexpected label %q", Label(desc))
	}
}

func TestRenderTableMaxWidth(t *testing.T) {
	d, _ := table.NewDataset([]string{"Note"}, []table.Row{{"Note": table.Text("a rather long note\nwith two lines")}})
	out := render(t, table.Project(d, nil, table.ViewState{}), TableOptions{MaxWidth: 8})

	if !strings.Contains(out, "a rathe"+ellipsis) {
		t.Errorf("expected truncated cell:\n%s", out)
	}
	if strings.Count(out, "\n") != 4 {
		t.Errorf("multi-line cell should stay on one line:\n%s", out)
	}
}

func TestRenderTableWideRunes(t *testing.T) {
	d, _ := table.NewDataset([]string{"City"}, []table.Row{
		{"City": table.Text("東京")},
		{"City": table.Text("Rome")},
	})
	out := render(t, table.Project(d, nil, table.ViewState{}), TableOptions{})
	lines := strings.Split(out, "\n")

	// 東京 is four cells wide, like Rome.
	if !strings.HasSuffix(lines[2], "東京") || !strings.HasSuffix(lines[3], "Rome") {
		t.Errorf("unexpected rows %q %q", lines[2], lines[3])
	}
	if len([]rune(lines[1])) != len([]rune(lines[2]))+2 {
		t.Errorf("rule and rows should span the same cells:\n%s", out)
	}
}

func TestRenderTableColor(t *testing.T) {
	tr, err := table.Transforms{}.SetColorRange("Age", []table.Row{
		{"Age": table.Number(25)}, {"Age": table.Number(30)},
	}, palette.White, palette.Black)
	if err != nil {
		t.Fatal(err)
	}
	out := render(t, view(t, tr, table.ViewState{}), TableOptions{Color: true})

	if !strings.Contains(out, "\x1b[48;2;0;0;0;38;2;255;255;255m") {
		t.Errorf("expected black background with white text for the max value:\n%q", out)
	}
	if !strings.Contains(out, "\x1b[48;2;255;255;255;38;2;0;0;0m") {
		t.Errorf("expected white background with black text for the min value:\n%q", out)
	}
}

func TestViewJSON(t *testing.T) {
	tr, _ := table.Transforms{}.SetColorRange("Age", []table.Row{
		{"Age": table.Number(25)}, {"Age": table.Number(30)},
	}, palette.White, palette.Black)
	tr = tr.Hide("Name").SetSort("Age", table.Asc)
	v := view(t, tr, table.ViewState{Sort: &table.SortKey{Column: "Age", Direction: table.Asc}})

	doc := ViewJSON(v)
	if doc.Shown != 2 || doc.Total != 2 || len(doc.Columns) != 1 {
		t.Fatalf("unexpected doc %+v", doc)
	}
	if doc.Rows[0].Index != 1 {
		t.Errorf("expected Bo (dataset row 1) first, got %d", doc.Rows[0].Index)
	}
	if _, ok := doc.Rows[0].Values["Name"]; ok {
		t.Error("hidden column should be left out")
	}
	if doc.Rows[1].Colors["Age"] != "#000000" {
		t.Errorf("unexpected color %q", doc.Rows[1].Colors["Age"])
	}

	data, err := json.Marshal(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"values":{"Age":25}`) {
		t.Errorf("unexpected JSON %s", data)
	}
}

func TestJSONEnvelope(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "sheets", []string{"A"}); err != nil {
		t.Fatal(err)
	}
	var ok JSONResult
	if err := json.Unmarshal(buf.Bytes(), &ok); err != nil {
		t.Fatal(err)
	}
	if !ok.OK || ok.Command != "sheets" || ok.Version == "" {
		t.Errorf("unexpected result %+v", ok)
	}

	buf.Reset()
	if err := WriteJSONError(&buf, "view", errors.New("boom"), ExitUserError); err != nil {
		t.Fatal(err)
	}
	var bad JSONResult
	if err := json.Unmarshal(buf.Bytes(), &bad); err != nil {
		t.Fatal(err)
	}
	if bad.OK || bad.Error != "boom" || bad.Code != ExitUserError {
		t.Errorf("unexpected error result %+v", bad)
	}
}

func TestShowWritesWhenNotPaging(t *testing.T) {
	var buf bytes.Buffer
	if err := Show(&buf, "hello\n", true); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "hello\n" {
		t.Errorf("unexpected output %q", buf.String())
	}
}
