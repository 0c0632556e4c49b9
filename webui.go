package main

const webUIHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>Investment Deal Summary</title>
    <style>
        :root {
            --primary: #0f172a;
            --accent: #2563eb;
            --success: #16a34a;
            --warning: #f59e0b;
            --danger: #dc2626;
            --bg: #f8fafc;
            --card-bg: #ffffff;
            --text: #1e293b;
            --text-muted: #64748b;
            --border: #e2e8f0;
        }
        * { box-sizing: border-box; margin: 0; padding: 0; }
        body {
            font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif;
            background: var(--bg);
            color: var(--text);
            line-height: 1.5;
        }
        header.top {
            background: var(--primary);
            color: #fff;
            padding: 1rem 2rem;
            display: flex;
            justify-content: space-between;
            align-items: center;
        }
        .progress { font-size: 0.85rem; color: #cbd5e1; }
        .layout { display: grid; grid-template-columns: 1fr 420px; gap: 1.5rem; padding: 1.5rem 2rem; }
        .card {
            background: var(--card-bg);
            border: 1px solid var(--border);
            border-radius: 10px;
            padding: 1.25rem;
            margin-bottom: 1rem;
        }
        .card h2 { font-size: 1.05rem; margin-bottom: 0.75rem; display: flex; justify-content: space-between; }
        .badge { font-size: 0.7rem; padding: 0.1rem 0.5rem; border-radius: 99px; background: var(--border); color: var(--text-muted); }
        .badge.done { background: #dcfce7; color: var(--success); }
        .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(200px, 1fr)); gap: 0.75rem; }
        label { display: block; font-size: 0.8rem; color: var(--text-muted); }
        input, select, textarea {
            width: 100%;
            padding: 0.45rem 0.6rem;
            border: 1px solid var(--border);
            border-radius: 6px;
            font: inherit;
        }
        textarea { min-height: 70px; }
        .err { color: var(--danger); font-size: 0.75rem; min-height: 1em; }
        .row { display: grid; grid-template-columns: 1fr 1fr 1fr auto; gap: 0.5rem; margin-bottom: 0.5rem; align-items: end; }
        button {
            padding: 0.45rem 0.9rem;
            border-radius: 6px;
            border: 1px solid var(--border);
            background: #fff;
            cursor: pointer;
        }
        button.primary { background: var(--accent); border-color: var(--accent); color: #fff; }
        button:disabled { opacity: 0.5; cursor: not-allowed; }
        .side .card { position: sticky; top: 1rem; }
        .pending li { color: var(--danger); font-size: 0.85rem; margin-left: 1rem; }
        .activity li { font-size: 0.8rem; color: var(--text-muted); list-style: none; }
        .metrics { display: grid; grid-template-columns: repeat(3, 1fr); gap: 0.5rem; margin-bottom: 0.75rem; }
        .metric { background: var(--bg); border-radius: 6px; padding: 0.5rem; text-align: center; }
        .metric b { display: block; font-size: 1.05rem; }
        .memo-preview h3 { font-size: 0.85rem; margin-top: 0.6rem; color: var(--accent); }
        .memo-preview dl { display: grid; grid-template-columns: auto 1fr; gap: 0.1rem 0.75rem; font-size: 0.8rem; }
        .memo-preview dt { color: var(--text-muted); }
        .alloc-row { display: grid; grid-template-columns: 90px 1fr 40px; gap: 0.4rem; font-size: 0.8rem; align-items: center; }
        .alloc-track { background: var(--border); height: 6px; border-radius: 3px; }
        .alloc-fill { background: var(--accent); height: 6px; border-radius: 3px; }
        .alloc-off { color: var(--danger); }
        .risk-success { color: var(--success); }
        .risk-warning { color: var(--warning); }
        .risk-destructive { color: var(--danger); }
        .muted, .risk-muted { color: var(--text-muted); }
        iframe { width: 100%; height: 480px; border: 1px solid var(--border); border-radius: 6px; margin-top: 0.75rem; }
    </style>
</head>
<body>
<header class="top">
    <div><strong>Investment Deal Summary</strong></div>
    <div class="progress" id="progress">0 of 7 sections complete</div>
</header>
<div class="layout">
    <main id="form">
        <section class="card" data-section="deal-information">
            <h2>Deal Information <span class="badge">Pending</span></h2>
            <div class="grid">
                <div><label>Company Name</label><input data-field="companyName"><div class="err" data-err="companyName"></div></div>
                <div><label>Industry</label><input data-field="industry"><div class="err" data-err="industry"></div></div>
                <div><label>Funding Stage</label><select data-field="fundingStage">
                    <option value="">Select stage</option>
                    <option>Pre-Seed</option><option>Seed</option><option>Series A</option><option>Series B</option>
                    <option>Series C</option><option>Growth</option><option>Late Stage</option>
                </select><div class="err" data-err="fundingStage"></div></div>
                <div><label>Investment Ask ($)</label><input data-field="investmentAsk" inputmode="decimal"><div class="err" data-err="investmentAsk"></div></div>
                <div><label>Valuation ($)</label><input data-field="valuation" inputmode="decimal"><div class="err" data-err="valuation"></div></div>
            </div>
        </section>

        <section class="card" data-section="founders">
            <h2>Founders <span class="badge">Pending</span></h2>
            <div id="founders"></div>
            <button type="button" id="add-founder">Add founder</button>
        </section>

        <section class="card" data-section="financial-highlights">
            <h2>Financial Highlights <span class="badge">Pending</span></h2>
            <div class="grid">
                <div><label>Revenue ($)</label><input data-field="revenue" inputmode="decimal"><div class="err" data-err="revenue"></div></div>
                <div><label>Monthly Burn ($)</label><input data-field="monthlyBurnRate" inputmode="decimal"><div class="err" data-err="monthlyBurnRate"></div></div>
                <div><label>Growth (%)</label><input data-field="growthPercentage" inputmode="decimal"><div class="err" data-err="growthPercentage"></div></div>
                <div><label>Available Cash ($)</label><input data-field="availableCash" inputmode="decimal"><div class="err" data-err="availableCash"></div></div>
            </div>
        </section>

        <section class="card" data-section="investment-structure">
            <h2>Investment Structure <span class="badge">Pending</span></h2>
            <div class="grid">
                <div><label>Equity Offered (%)</label><input data-field="equityOffered" inputmode="decimal"><div class="err" data-err="equityOffered"></div></div>
                <div><label>Ticket Size ($)</label><input data-field="ticketSize" inputmode="decimal"><div class="err" data-err="ticketSize"></div></div>
                <div><label>Minimum Investment ($)</label><input data-field="minimumInvestment" inputmode="decimal"><div class="err" data-err="minimumInvestment"></div></div>
            </div>
            <h3 style="font-size:0.9rem;margin:0.75rem 0 0.5rem">Use of Funds <span id="alloc-total" class="muted"></span></h3>
            <div id="allocations"></div>
            <div class="err" data-err="allocation"></div>
            <button type="button" id="add-allocation">Add category</button>
        </section>

        <section class="card" data-section="risk-assessment">
            <h2>Risk Assessment <span class="badge">Pending</span></h2>
            <div class="grid">
                <div><label>Market Risk</label><select data-field="marketRisk" data-int="1">
                    <option value="0">Not Set</option><option value="1">Low</option><option value="2">Medium</option><option value="3">High</option>
                </select><div class="err" data-err="marketRisk"></div></div>
                <div><label>Product Risk</label><select data-field="productRisk" data-int="1">
                    <option value="0">Not Set</option><option value="1">Low</option><option value="2">Medium</option><option value="3">High</option>
                </select><div class="err" data-err="productRisk"></div></div>
                <div><label>Team Risk</label><select data-field="teamRisk" data-int="1">
                    <option value="0">Not Set</option><option value="1">Low</option><option value="2">Medium</option><option value="3">High</option>
                </select><div class="err" data-err="teamRisk"></div></div>
            </div>
        </section>

        <section class="card" data-section="milestones">
            <h2>Milestones <span class="badge">Pending</span></h2>
            <div id="milestones"></div>
            <button type="button" id="add-milestone">Add milestone</button>
        </section>

        <section class="card" data-section="notes-strategy">
            <h2>Notes &amp; Strategy <span class="badge">Pending</span></h2>
            <label>Key Assumptions</label><textarea data-field="keyAssumptions"></textarea>
            <label>Exit Strategy</label><textarea data-field="exitStrategy"></textarea>
            <label>Additional Remarks</label><textarea data-field="additionalRemarks"></textarea>
        </section>
    </main>

    <aside class="side">
        <div class="card">
            <div class="metrics">
                <div class="metric"><span class="muted">Runway</span><b id="m-runway">N/A</b></div>
                <div class="metric"><span class="muted">Risk</span><b id="m-risk">Pending</b></div>
                <div class="metric"><span class="muted">Allocated</span><b id="m-alloc">0%</b></div>
            </div>
            <ul class="pending" id="pending"></ul>
            <div style="display:flex;gap:0.5rem;margin:0.75rem 0">
                <button type="button" class="primary" id="download" disabled>Download PDF</button>
                <button type="button" id="export" disabled>Save PDF</button>
                <button type="button" id="sample">Load sample</button>
            </div>
            <div id="export-msg" class="muted" style="font-size:0.8rem"></div>
            <div id="live-preview"></div>
            <iframe id="pdf-frame" title="PDF preview"></iframe>
            <ul class="activity" id="activity"></ul>
        </div>
    </aside>
</div>

<script>
let state = null;
let derived = null;
let interacted = false;
let previous = {};
let activity = [];
let seq = 0;
let socket = null;
let timer = null;

async function postJSON(url, body) {
    const res = await fetch(url, {
        method: 'POST',
        headers: {'Content-Type': 'application/json'},
        body: JSON.stringify(body)
    });
    return res;
}

function esc(s) {
    return String(s == null ? '' : s).replace(/[&<>"]/g, c => ({'&': '&amp;', '<': '&lt;', '>': '&gt;', '"': '&quot;'}[c]));
}

function bindScalars() {
    document.querySelectorAll('[data-field]').forEach(el => {
        el.value = state[el.dataset.field] == null ? '' : state[el.dataset.field];
        el.oninput = () => {
            state[el.dataset.field] = el.dataset.int ? parseInt(el.value, 10) : el.value;
            changed();
        };
    });
}

function renderList(id, items, fields) {
    const box = document.getElementById(id);
    box.innerHTML = items.map((item, i) =>
        '<div class="row">' + fields.map(f =>
            '<div><label>' + f.label + '</label><input data-idx="' + i + '" data-key="' + f.key + '" value="' + esc(item[f.key]) + '"' +
            (f.type ? ' type="' + f.type + '" min="0" max="100"' : '') + '>' +
            (f.err ? '<div class="err" data-err="' + f.err.replace('{i}', i) + '"></div>' : '') + '</div>'
        ).join('') + '<button type="button" data-remove="' + i + '">Remove</button></div>'
    ).join('');
    box.querySelectorAll('input').forEach(el => {
        el.oninput = () => {
            const v = el.type === 'number' ? Math.max(0, Math.min(100, parseInt(el.value || '0', 10))) : el.value;
            items[+el.dataset.idx][el.dataset.key] = v;
            changed();
        };
    });
    box.querySelectorAll('[data-remove]').forEach(el => {
        el.onclick = () => {
            if (items.length <= 1) return;
            items.splice(+el.dataset.remove, 1);
            renderLists();
            changed();
        };
    });
}

function renderLists() {
    renderList('founders', state.founders, [
        {key: 'name', label: 'Name', err: 'founder_{i}_name'},
        {key: 'role', label: 'Role', err: 'founder_{i}_role'},
        {key: 'experience', label: 'Experience'},
        {key: 'background', label: 'Background'}
    ]);
    renderList('milestones', state.milestones, [
        {key: 'title', label: 'Title', err: 'milestone_{i}_title'},
        {key: 'timeline', label: 'Timeline (e.g. Q3 2026)'}
    ]);
    renderList('allocations', state.fundAllocations, [
        {key: 'category', label: 'Category'},
        {key: 'percentage', label: 'Percent', type: 'number'}
    ]);
}

function changed() {
    interacted = true;
    clearTimeout(timer);
    timer = setTimeout(refresh, 250);
}

async function refresh() {
    const res = await postJSON('/api/deal/derive', state);
    derived = await res.json();
    showDerived();
    const html = await postJSON('/api/deal/live-preview', state);
    document.getElementById('live-preview').innerHTML = await html.text();
    if (socket && socket.readyState === WebSocket.OPEN) {
        socket.send(JSON.stringify({seq: ++seq, deal: state}));
    }
}

function showDerived() {
    document.querySelectorAll('[data-err]').forEach(el => {
        el.textContent = interacted ? (derived.errors[el.dataset.err] || '') : '';
    });
    const now = new Date().toLocaleTimeString([], {hour: 'numeric', minute: '2-digit'});
    derived.sections.forEach(s => {
        const badge = document.querySelector('[data-section="' + s.id + '"] .badge');
        badge.textContent = s.complete ? 'Complete' : 'Pending';
        badge.classList.toggle('done', s.complete);
        if (interacted && previous[s.id] !== undefined && previous[s.id] !== s.complete) {
            activity.unshift(s.title + (s.complete ? ' completed' : ' marked incomplete') + ' · ' + now);
        }
        previous[s.id] = s.complete;
    });
    activity = activity.slice(0, 5);
    document.getElementById('activity').innerHTML = activity.map(a => '<li>' + esc(a) + '</li>').join('');
    document.getElementById('progress').textContent =
        derived.completedCount + ' of ' + derived.sections.length + ' sections complete (' + derived.completionPct + '%)';
    document.getElementById('pending').innerHTML = derived.pendingItems.map(p => '<li>' + esc(p) + '</li>').join('');

    const m = derived.metrics;
    document.getElementById('m-runway').textContent = m.runwayKnown ? m.runwayMonths.toFixed(1) + ' mo' : 'N/A';
    document.getElementById('m-risk').textContent = m.riskScore == null ? 'Pending' : m.riskScore.toFixed(1) + ' ' + m.riskBand;
    document.getElementById('m-alloc').textContent = m.totalAllocation + '%';
    document.getElementById('alloc-total').textContent = '(' + m.totalAllocation + '% of 100%)';
    document.getElementById('download').disabled = !derived.valid;
    document.getElementById('export').disabled = !derived.valid;
}

function connectPreview() {
    const proto = location.protocol === 'https:' ? 'wss://' : 'ws://';
    socket = new WebSocket(proto + location.host + '/ws/preview');
    socket.onmessage = ev => {
        const msg = JSON.parse(ev.data);
        if (msg.seq !== seq || !msg.pdf) return;
        document.getElementById('pdf-frame').src = 'data:application/pdf;base64,' + msg.pdf;
    };
    socket.onclose = () => setTimeout(connectPreview, 2000);
}

async function load(url) {
    const res = await fetch(url);
    state = await res.json();
    bindScalars();
    renderLists();
    await refresh();
}

document.getElementById('add-founder').onclick = () => {
    state.founders.push({id: '', name: '', role: '', experience: '', background: ''});
    renderLists(); changed();
};
document.getElementById('add-milestone').onclick = () => {
    state.milestones.push({id: '', title: '', timeline: ''});
    renderLists(); changed();
};
document.getElementById('add-allocation').onclick = () => {
    state.fundAllocations.push({id: '', category: 'Other', percentage: 0});
    renderLists(); changed();
};
document.getElementById('sample').onclick = () => { interacted = true; load('/api/deal/sample'); };

document.getElementById('download').onclick = async () => {
    const res = await postJSON('/api/deal/download', state);
    if (res.status === 422) {
        const body = await res.json();
        document.getElementById('export-msg').textContent = body.pendingItems.join('; ');
        return;
    }
    const blob = await res.blob();
    const a = document.createElement('a');
    a.href = URL.createObjectURL(blob);
    a.download = (res.headers.get('Content-Disposition') || '').split('filename=')[1]?.replace(/"/g, '') || 'Investment_Summary.pdf';
    a.click();
};
document.getElementById('export').onclick = async () => {
    const res = await postJSON('/api/deal/export', state);
    const body = await res.json();
    document.getElementById('export-msg').textContent = body.message;
};

connectPreview();
load('/api/deal/initial');
</script>
</body>
</html>
`
