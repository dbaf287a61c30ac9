package paperhtml

// DefaultTemplate lays a paper out for browser printing. Sizes mirror the
// fpdf layout: 11pt body, 10mm sub-question indent, 6mm answer lines.
const DefaultTemplate = blockMacro + pageTemplate

const blockMacro = `{% macro render_block(b) %}{% if b.Kind == "text" %}<p class="text">{{ b.Text }}</p>
{% elif b.Kind == "formula" %}<p class="formula">{{ b.Text }}</p>
{% elif b.Kind == "image" %}<figure><img src="{{ b.URL }}" alt="{{ b.Caption }}"{% if b.Width %} width="{{ b.Width }}"{% endif %}{% if b.Height %} height="{{ b.Height }}"{% endif %} style="max-width:100%">{% if b.Caption %}<figcaption>{{ b.Caption }}</figcaption>{% endif %}</figure>
{% elif b.Kind == "table" %}<table>{% if b.Headers %}<tr>{% for h in b.Headers %}<th>{{ h }}</th>{% endfor %}</tr>{% endif %}{% for row in b.Rows %}<tr>{% for cell in row %}<td>{{ cell }}</td>{% endfor %}</tr>{% endfor %}</table>
{% elif b.Kind == "diagram" %}<div class="diagram"></div><div class="diagram-caption">{{ b.Caption }}</div>
{% elif b.Kind == "list" %}<ul>{% for item in b.Items %}<li>{{ item }}</li>{% endfor %}</ul>
{% elif b.Kind == "blank" %}{% for line in b.Lines %}<div class="blank"></div>{% endfor %}
{% endif %}{% endmacro %}`

const pageTemplate = `<!DOCTYPE html>
<html lang="{{ page.Lang }}">
<head>
<meta charset="utf-8">
<title>{{ page.Title }}</title>
<style>
  body { font-family: "Noto Sans Bengali", "Kalpurush", "SolaimanLipi", Helvetica, Arial, sans-serif; font-size: 11pt; margin: 0; }
  header { text-align: center; border-bottom: 1px solid #000; padding-bottom: 2mm; margin-bottom: 2mm; }
  header img.logo { width: 20mm; display: block; margin: 0 auto 1mm; }
  header .board { font-size: 16pt; font-weight: bold; }
  header .school { font-size: 14pt; font-weight: bold; }
  header .title { font-size: 13pt; font-weight: bold; }
  .summary { text-align: center; margin-bottom: 5mm; }
  .notice { font-size: 14pt; font-weight: bold; }
  .question { margin-bottom: 4mm; break-inside: avoid-page; }
  .heading { font-weight: bold; }
  .part { display: flex; margin-left: 10mm; }
  .part .label { font-weight: bold; width: 10mm; flex: none; }
  .part .body { flex: 1; }
  .part .marks { text-align: right; flex: none; padding-left: 2mm; }
  p.text { white-space: pre-wrap; margin: 0 0 2mm; }
  .formula { font-family: Courier, monospace; text-align: center; margin: 0 0 2mm; }
  figure { margin: 0 0 2mm; }
  figcaption { font-style: italic; text-align: center; }
  table { border-collapse: collapse; margin: 0 0 2mm; width: calc(100% - 15mm); }
  th, td { border: 1px solid #000; padding: 1mm; text-align: center; }
  th { background: #dcdcdc; font-weight: bold; }
  .diagram { width: 80mm; height: 40mm; background: #ebebeb; }
  .diagram-caption { text-align: center; margin-bottom: 2mm; }
  ul { list-style: "- "; margin: 0 0 2mm; padding-left: 5mm; }
  .blank { border-bottom: 1px solid #000; height: 6mm; }
</style>
</head>
<body>
{% if not page.Valid %}
<p class="notice">{{ page.Notice }}</p>
{% else %}
<header>
  {% if page.Header.Logo %}<img class="logo" src="{{ page.Header.Logo }}" alt="">{% endif %}
  {% if page.Header.Board %}<div class="board">{{ page.Header.Board }}</div>{% endif %}
  {% if page.Header.School %}<div class="school">{{ page.Header.School }}</div>{% endif %}
  {% if page.Header.Title %}<div class="title">{{ page.Header.Title }}</div>{% endif %}
  {% if page.Header.Class %}<div>{{ page.Header.Class }}</div>{% endif %}
  {% if page.Header.Subject %}<div>{{ page.Header.Subject }}</div>{% endif %}
</header>
{% if page.Header.Summary %}<div class="summary">{{ page.Header.Summary }}</div>{% endif %}
{% for q in page.Questions %}
<section class="question">
  <div class="heading">{{ q.Heading }}</div>
  {% for b in q.Blocks %}{{ render_block(b) }}{% endfor %}
  {% for p in q.Parts %}
  <div class="part">
    <div class="label">{{ p.Label }}</div>
    <div class="body">{% for b in p.Blocks %}{{ render_block(b) }}{% endfor %}</div>
    {% if p.Marks %}<div class="marks">[{{ p.Marks }}]</div>{% endif %}
  </div>
  {% endfor %}
</section>
{% endfor %}
{% endif %}
</body>
</html>
`
