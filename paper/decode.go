package paper

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var headerAliases = map[string][]string{
	"boardName":  {"boardName", "board_name", "board"},
	"schoolName": {"schoolName", "school_name", "institution"},
	"examType":   {"examType", "exam_type"},
	"examTitle":  {"examTitle", "exam_title", "title"},
	"className":  {"class", "className", "class_name"},
	"subject":    {"subject"},
	"totalMarks": {"totalMarks", "total_marks", "fullMarks"},
	"duration":   {"duration", "time"},
	"logo":       {"logo", "logoUrl", "logo_url"},
	"paperCode":  {"paperCode", "paper_code", "setCode"},
}

type rawQuestion struct {
	Number       json.RawMessage   `json:"number"`
	Marks        json.RawMessage   `json:"marks"`
	Blocks       []json.RawMessage `json:"blocks"`
	SubQuestions []json.RawMessage `json:"subQuestions"`
}

type rawSubQuestion struct {
	Label  json.RawMessage   `json:"label"`
	Marks  json.RawMessage   `json:"marks"`
	Blocks []json.RawMessage `json:"blocks"`
}

type rawBlock struct {
	Type    string          `json:"type"`
	Content json.RawMessage `json:"content"`
}

type rawImage struct {
	URL     string          `json:"url"`
	Width   json.RawMessage `json:"width"`
	Height  json.RawMessage `json:"height"`
	Caption json.RawMessage `json:"caption"`
}

type rawTable struct {
	Headers []json.RawMessage `json:"headers"`
	Data    []json.RawMessage `json:"data"`
}

// Decode parses question paper JSON into the typed model. Only input that is not
// a JSON object fails; everything else degrades to blanks and skipped blocks,
// with the reasons collected in Paper.Problems.
func Decode(data []byte) (Paper, error) {
	var root map[string]json.RawMessage
	if err := json.Unmarshal(data, &root); err != nil {
		return Paper{}, NewError(KindValidation, "question paper must be a JSON object", err)
	}
	if root == nil {
		return Paper{}, NewError(KindValidation, "question paper must be a JSON object", nil)
	}
	return decodeRoot(root), nil
}

func decodeRoot(root map[string]json.RawMessage) Paper {
	p := Paper{Valid: true}

	header, hasHeader := decodeObject(root["header"])
	setup, hasSetup := decodeObject(root["setup"])
	if !hasHeader && !hasSetup {
		p.Valid = false
		p.Problems = append(p.Problems, "missing header/setup section")
	}
	p.Header = decodeHeader(header, setup)

	rawQuestions, ok := root["questions"]
	var items []json.RawMessage
	if ok && !isNull(rawQuestions) {
		if err := json.Unmarshal(rawQuestions, &items); err != nil {
			ok = false
		}
	} else {
		ok = false
	}
	if !ok {
		p.Valid = false
		p.Problems = append(p.Problems, "missing questions section")
		return p
	}

	for i, item := range items {
		var rq rawQuestion
		if err := json.Unmarshal(item, &rq); err != nil {
			p.Problems = append(p.Problems, fmt.Sprintf("question %d: %v", i+1, err))
			continue
		}
		q := Question{
			Number: scalarString(rq.Number),
			Marks:  marksLabel(rq.Marks),
			Blocks: decodeBlocks(rq.Blocks, &p.Problems),
		}
		if q.Number == "" {
			q.Number = strconv.Itoa(i + 1)
		}
		for j, rawSub := range rq.SubQuestions {
			var rs rawSubQuestion
			if err := json.Unmarshal(rawSub, &rs); err != nil {
				p.Problems = append(p.Problems, fmt.Sprintf("question %s part %d: %v", q.Number, j+1, err))
				continue
			}
			q.SubQuestions = append(q.SubQuestions, SubQuestion{
				Label:  scalarString(rs.Label),
				Marks:  marksLabel(rs.Marks),
				Blocks: decodeBlocks(rs.Blocks, &p.Problems),
			})
		}
		p.Questions = append(p.Questions, q)
	}
	return p
}

func decodeHeader(sections ...map[string]json.RawMessage) Header {
	pick := func(field string) string {
		for _, section := range sections {
			for _, key := range headerAliases[field] {
				if value := scalarString(section[key]); value != "" {
					return value
				}
			}
		}
		return ""
	}
	return Header{
		BoardName:  pick("boardName"),
		SchoolName: pick("schoolName"),
		ExamType:   pick("examType"),
		ExamTitle:  pick("examTitle"),
		ClassName:  pick("className"),
		Subject:    pick("subject"),
		TotalMarks: pick("totalMarks"),
		Duration:   pick("duration"),
		Logo:       pick("logo"),
		PaperCode:  pick("paperCode"),
	}
}

func decodeBlocks(raws []json.RawMessage, problems *[]string) []Block {
	blocks := make([]Block, 0, len(raws))
	for _, raw := range raws {
		var rb rawBlock
		if err := json.Unmarshal(raw, &rb); err != nil {
			*problems = append(*problems, fmt.Sprintf("block: %v", err))
			continue
		}
		block := Block{Type: BlockType(strings.ToLower(strings.TrimSpace(rb.Type)))}
		content, _ := decodeObject(rb.Content)
		switch block.Type {
		case BlockText:
			block.Text = &TextContent{Text: scalarString(content["text"])}
		case BlockFormula:
			block.Formula = &FormulaContent{Latex: scalarString(content["latex"])}
		case BlockImage:
			var ri rawImage
			if err := json.Unmarshal(rb.Content, &ri); err == nil {
				block.Image = &ImageContent{
					URL:     strings.TrimSpace(ri.URL),
					Width:   scalarFloat(ri.Width),
					Height:  scalarFloat(ri.Height),
					Caption: scalarString(ri.Caption),
				}
			}
		case BlockTable:
			var rt rawTable
			if err := json.Unmarshal(rb.Content, &rt); err == nil {
				block.Table = &TableContent{Headers: stringList(rt.Headers)}
				for _, row := range rt.Data {
					var cells []json.RawMessage
					if err := json.Unmarshal(row, &cells); err != nil {
						continue
					}
					block.Table.Rows = append(block.Table.Rows, stringList(cells))
				}
			}
		case BlockDiagram:
			block.Diagram = &DiagramContent{Description: scalarString(content["description"])}
		case BlockList:
			var items []json.RawMessage
			_ = json.Unmarshal(content["items"], &items)
			block.List = &ListContent{Items: stringList(items)}
		case BlockBlank:
			blank := &BlankContent{}
			if raw, ok := content["lines"]; ok && !isNull(raw) {
				blank.Lines = int(scalarFloat(raw))
				blank.LinesSet = true
			}
			block.Blank = blank
		}
		blocks = append(blocks, block)
	}
	return blocks
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, bool) {
	if len(raw) == 0 || isNull(raw) {
		return nil, false
	}
	var obj map[string]json.RawMessage
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, false
	}
	return obj, true
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}

// scalarString renders strings and numbers as display text; other JSON values
// are blank.
func scalarString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return ""
	}
	return cellString(value)
}

func cellString(value any) string {
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v)
	case json.Number:
		return v.String()
	case bool:
		return strconv.FormatBool(v)
	case nil:
		return ""
	default:
		payload, err := json.Marshal(v)
		if err != nil {
			return ""
		}
		return string(payload)
	}
}

func stringList(raws []json.RawMessage) []string {
	out := make([]string, 0, len(raws))
	for _, raw := range raws {
		dec := json.NewDecoder(bytes.NewReader(raw))
		dec.UseNumber()
		var value any
		if err := dec.Decode(&value); err != nil {
			out = append(out, "")
			continue
		}
		out = append(out, cellString(value))
	}
	return out
}

func scalarFloat(raw json.RawMessage) float64 {
	text := strings.TrimSuffix(strings.ToLower(scalarString(raw)), "px")
	value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) || value < 0 {
		return 0
	}
	return value
}

// marksLabel returns the marks as display text, or "" for falsy values.
func marksLabel(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var value any
	if err := dec.Decode(&value); err != nil {
		return ""
	}
	switch v := value.(type) {
	case bool:
		return ""
	case json.Number:
		if f, err := v.Float64(); err == nil && f == 0 {
			return ""
		}
		return v.String()
	case string:
		text := strings.TrimSpace(v)
		if f, err := strconv.ParseFloat(text, 64); err == nil && f == 0 {
			return ""
		}
		return text
	default:
		return ""
	}
}
