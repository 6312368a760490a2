package web

const indexHTML = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>MKfrx Markets</title>
<style>
  body { font-family: system-ui, sans-serif; margin: 0; background: #0e1217; color: #e6e9ef; }
  main { max-width: 1100px; margin: 0 auto; padding: 24px; }
  h1 { font-size: 20px; }
  .controls { display: flex; gap: 8px; margin-bottom: 16px; flex-wrap: wrap; }
  .controls input, .controls select, .controls button {
    background: #1a2029; color: inherit; border: 1px solid #2c3440; border-radius: 6px; padding: 6px 10px;
  }
  .controls button.active { border-color: #4ade80; }
  table { width: 100%; border-collapse: collapse; margin-bottom: 24px; }
  th, td { text-align: left; padding: 6px 10px; border-bottom: 1px solid #202733; font-size: 14px; }
  .up { color: #4ade80; } .down { color: #f87171; }
  .cards { display: flex; gap: 16px; flex-wrap: wrap; margin-bottom: 24px; }
  .card { background: #141a22; border: 1px solid #202733; border-radius: 10px; padding: 16px; min-width: 220px; }
  .muted { color: #8b94a3; font-size: 13px; }
  td button { background: #1a2029; color: inherit; border: 1px solid #2c3440; border-radius: 6px; padding: 3px 10px; cursor: pointer; }
  td input[type=number] { width: 64px; background: #1a2029; color: inherit; border: 1px solid #2c3440; border-radius: 6px; padding: 3px 6px; }
  #notice { position: fixed; top: 16px; right: 16px; background: #1a2029; border: 1px solid #2c3440;
    border-radius: 8px; padding: 12px 16px; display: none; max-width: 360px; }
  #chart { width: 100%; height: 240px; background: #141a22; border: 1px solid #202733; border-radius: 10px; }
</style>
</head>
<body>
<main>
  <h1>MKfrx Markets</h1>
  <section class="cards">
    <div class="card"><div class="muted">Available Balance</div><div id="balance" style="font-size:24px;font-weight:700">–</div></div>
    <div class="card" style="flex:1"><div class="muted">Your Holdings</div><div id="holdings"></div>
      <div style="text-align:right;font-weight:700" id="total"></div></div>
  </section>
  <div class="controls">
    <select id="quote"></select>
    <input id="search" placeholder="Search coin (e.g. BTC)...">
    <button id="gainers">Gainers</button>
    <button id="losers">Losers</button>
  </div>
  <table>
    <thead><tr><th>Asset</th><th>Last</th><th>24h %</th><th>Volume</th><th>Qty</th><th></th><th></th><th></th></tr></thead>
    <tbody id="listing"></tbody>
  </table>
  <canvas id="chart" width="1060" height="240"></canvas>
</main>
<div id="notice"></div>
<script>
const qs = (s) => document.querySelector(s);
let state = { filter: { quote: "ALL", search: "", sort: "NONE" } };

function notify(text) {
  const el = qs('#notice');
  el.textContent = text;
  el.style.display = 'block';
  clearTimeout(el._t);
  el._t = setTimeout(() => el.style.display = 'none', 5000);
}

function pushFilters() {
  fetch('/filters', { method: 'POST', headers: {'Content-Type': 'application/json'},
    body: JSON.stringify(state.filter) });
}

qs('#search').addEventListener('input', (e) => { state.filter.search = e.target.value; pushFilters(); });
qs('#quote').addEventListener('change', (e) => { state.filter.quote = e.target.value; pushFilters(); });
qs('#gainers').addEventListener('click', () => { toggleSort('GAINERS'); });
qs('#losers').addEventListener('click', () => { toggleSort('LOSERS'); });

function toggleSort(mode) {
  state.filter.sort = state.filter.sort === mode ? 'NONE' : mode;
  qs('#gainers').classList.toggle('active', state.filter.sort === 'GAINERS');
  qs('#losers').classList.toggle('active', state.filter.sort === 'LOSERS');
  pushFilters();
}

function trade(side, symbol, qty) {
  fetch('/trade', { method: 'POST', headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({ side: side, symbol: symbol, qty: qty }) })
    .then(r => r.json())
    .then(d => { if (d.notice) notify(d.notice); })
    .catch(() => notify('Network error occurred.'));
}

function renderMarkets(d) {
  const quote = qs('#quote');
  quote.innerHTML = d.quotes.map(q =>
    '<option value="' + q + '"' + (q === d.filter.quote ? ' selected' : '') + '>' +
    (q === 'ALL' ? 'All Pairs' : q.toUpperCase()) + '</option>').join('');

  qs('#balance').textContent = d.balance && d.balance.INR !== undefined ? '₹' + d.balance.INR : '–';
  qs('#holdings').innerHTML = d.valuation.rows.map(r =>
    '<span style="margin-right:10px">' + r.asset + ': ' + r.qty + ' (₹' + r.totalValue + ')</span>').join('');
  qs('#total').textContent = 'Total: ₹' + d.valuation.total;

  qs('#listing').innerHTML = d.listing.map(t => {
    const up = !t.change.startsWith('-');
    return '<tr>' +
      '<td>' + t.baseAsset.toUpperCase() + '<span class="muted">/' + t.quoteAsset.toUpperCase() + '</span></td>' +
      '<td>₹' + t.lastPrice + '</td>' +
      '<td class="' + (up ? 'up' : 'down') + '">' + (up ? '+' : '') + t.change + '%</td>' +
      '<td class="muted">' + t.volume + '</td>' +
      '<td><input type="number" min="1" value="1" id="qty-' + t.symbol + '"></td>' +
      '<td><button onclick="trade(\'buy\',\'' + t.symbol + '\', parseInt(document.getElementById(\'qty-' + t.symbol + '\').value)||1)">Buy</button></td>' +
      '<td><button onclick="trade(\'sell\',\'' + t.symbol + '\', parseInt(document.getElementById(\'qty-' + t.symbol + '\').value)||1)">Sell</button></td>' +
      '<td><button onclick="chartSymbol(\'' + t.symbol + '\')">Chart</button></td>' +
      '</tr>';
  }).join('');
}

function chartSymbol(symbol) {
  fetch('/chart/symbol', { method: 'POST', headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({ symbol: symbol }) });
}

function renderChart(d) {
  const canvas = qs('#chart'), ctx = canvas.getContext('2d');
  ctx.clearRect(0, 0, canvas.width, canvas.height);
  const prices = d.series.map(p => p.price);
  if (!prices.length) return;
  const min = Math.min(...prices), max = Math.max(...prices), span = (max - min) || 1;
  ctx.strokeStyle = '#4ade80';
  ctx.beginPath();
  prices.forEach((p, i) => {
    const x = i / (prices.length - 1) * canvas.width;
    const y = canvas.height - ((p - min) / span) * (canvas.height - 20) - 10;
    i === 0 ? ctx.moveTo(x, y) : ctx.lineTo(x, y);
  });
  ctx.stroke();
  ctx.fillStyle = '#8b94a3';
  ctx.fillText(d.symbol.toUpperCase(), 10, 16);
}

const markets = new EventSource('/markets/stream');
markets.addEventListener('markets', (e) => renderMarkets(JSON.parse(e.data)));
const chart = new EventSource('/chart/stream');
chart.addEventListener('chart', (e) => renderChart(JSON.parse(e.data)));
const intentsStream = new EventSource('/intents/stream');
intentsStream.addEventListener('intent', (e) => {
  const d = JSON.parse(e.data);
  console.log('intent', d);
});
</script>
</body>
</html>
`
