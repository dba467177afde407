package templates

// Embedded starter shells, served when a template is opened without an
// engine round trip. Each is a self-contained single page in the house
// style: deep space background, precision borders, canvas telemetry.

const starterAudioEngine = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>AI Audio Engine</title>
<style>
  body { margin: 0; background: #020617; color: #e2e8f0; font-family: Inter, sans-serif; }
  .rack { max-width: 960px; margin: 48px auto; border: 1px solid #1e293b; border-radius: 8px; padding: 24px; }
  h1 { font-size: 18px; letter-spacing: 0.2em; text-transform: uppercase; color: #5eead4; }
  canvas { width: 100%; height: 160px; background: #0f172a; border: 1px solid #1e293b; }
  .meta { font-family: "JetBrains Mono", monospace; font-size: 12px; color: #64748b; }
</style>
</head>
<body>
<div class="rack">
  <h1>AI Audio Engine</h1>
  <canvas id="wave"></canvas>
  <p class="meta">voicebox core · 24kHz · latency 12ms</p>
</div>
<script>
  const c = document.getElementById('wave');
  const ctx = c.getContext('2d');
  let t = 0;
  function draw() {
    ctx.clearRect(0, 0, c.width, c.height);
    ctx.strokeStyle = '#5eead4';
    ctx.beginPath();
    for (let x = 0; x < c.width; x++) {
      const y = c.height / 2 + Math.sin(x / 18 + t) * 22 * Math.sin(t / 3);
      x === 0 ? ctx.moveTo(x, y) : ctx.lineTo(x, y);
    }
    ctx.stroke();
    t += 0.08;
    requestAnimationFrame(draw);
  }
  draw();
</script>
</body>
</html>`

const starterAnalytics = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Real-time Analytics</title>
<style>
  body { margin: 0; background: #020617; color: #e2e8f0; font-family: Inter, sans-serif; }
  .grid { display: grid; grid-template-columns: repeat(3, 1fr); gap: 16px; max-width: 960px; margin: 48px auto; }
  .card { border: 1px solid #1e293b; border-radius: 8px; padding: 20px; background: #0f172a; }
  .label { font-size: 11px; text-transform: uppercase; letter-spacing: 0.15em; color: #64748b; }
  .value { font-family: "JetBrains Mono", monospace; font-size: 28px; color: #818cf8; }
</style>
</head>
<body>
<div class="grid">
  <div class="card"><div class="label">Events / sec</div><div class="value" id="eps">0</div></div>
  <div class="card"><div class="label">Active sessions</div><div class="value" id="sessions">0</div></div>
  <div class="card"><div class="label">P95 latency</div><div class="value" id="p95">0ms</div></div>
</div>
<script>
  setInterval(() => {
    document.getElementById('eps').textContent = (900 + Math.random() * 300) | 0;
    document.getElementById('sessions').textContent = (140 + Math.random() * 40) | 0;
    document.getElementById('p95').textContent = ((38 + Math.random() * 14) | 0) + 'ms';
  }, 800);
</script>
</body>
</html>`

const starterGrowthCRM = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<title>Growth CRM</title>
<style>
  body { margin: 0; background: #020617; color: #e2e8f0; font-family: Inter, sans-serif; }
  .board { display: flex; gap: 16px; max-width: 960px; margin: 48px auto; }
  .col { flex: 1; border: 1px solid #1e293b; border-radius: 8px; padding: 16px; background: #0f172a; }
  .col h2 { font-size: 12px; text-transform: uppercase; letter-spacing: 0.15em; color: #5eead4; }
  .deal { border: 1px solid #1e293b; border-radius: 6px; padding: 10px; margin-bottom: 8px; font-size: 13px; }
  .amount { font-family: "JetBrains Mono", monospace; color: #818cf8; }
</style>
</head>
<body>
<div class="board">
  <div class="col"><h2>Lead</h2><div class="deal">Acme Corp <span class="amount">$12k</span></div></div>
  <div class="col"><h2>Proposal</h2><div class="deal">Northwind <span class="amount">$28k</span></div></div>
  <div class="col"><h2>Closed</h2><div class="deal">Initech <span class="amount">$45k</span></div></div>
</div>
</body>
</html>`
