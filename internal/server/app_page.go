package server

import (
	"html/template"
	"log"
	"net/http"

	"github.com/clipscreen/clipscreen/internal/httputil"
)

var appPageTemplate = template.Must(template.New("app").Parse(`<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8">
    <meta name="viewport" content="width=device-width, initial-scale=1">
    <title>ClipScreen — Video Content Moderation</title>
    <style nonce="{{.Nonce}}">
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body {
            background: #0f172a;
            color: #e2e8f0;
            font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", Roboto, sans-serif;
            min-height: 100vh;
        }
        .container { max-width: 960px; margin: 0 auto; padding: 2rem 1rem; }
        h1 { font-size: 1.5rem; font-weight: 600; }
        .tagline { color: #94a3b8; font-size: 0.875rem; margin-top: 0.25rem; margin-bottom: 1.5rem; }
        .card { background: #1e293b; border-radius: 8px; padding: 1.25rem; margin-bottom: 1rem; }
        .card h2 { font-size: 1rem; margin-bottom: 0.75rem; }
        input[type="email"], input[type="password"], input[type="text"], input[type="url"] {
            width: 100%;
            padding: 0.625rem 0.75rem;
            border-radius: 6px;
            border: 1px solid #334155;
            background: #0f172a;
            color: #fff;
            font-size: 0.875rem;
            margin-bottom: 0.75rem;
            outline: none;
        }
        input:focus { border-color: #22c55e; }
        button {
            background: #22c55e;
            color: #fff;
            padding: 0.625rem 1rem;
            border: none;
            border-radius: 6px;
            font-size: 0.875rem;
            font-weight: 600;
            cursor: pointer;
        }
        button:hover { opacity: 0.9; }
        button:disabled { opacity: 0.5; cursor: not-allowed; }
        button.secondary { background: #334155; }
        .error { color: #ef4444; font-size: 0.8rem; margin-bottom: 0.75rem; display: none; }
        .hidden { display: none; }
        .or { text-align: center; color: #64748b; font-size: 0.8rem; margin: 0.75rem 0; }
        .file-row { display: flex; gap: 0.75rem; align-items: center; margin-bottom: 0.75rem; }
        .file-row input[type="file"] { color: #94a3b8; font-size: 0.8rem; }
        .tabs { display: flex; gap: 0.25rem; margin-bottom: 1rem; border-bottom: 1px solid #334155; }
        .tab {
            background: none;
            color: #94a3b8;
            border: none;
            padding: 0.625rem 1rem;
            border-bottom: 2px solid transparent;
            border-radius: 0;
            font-weight: 600;
        }
        .tab.active { color: #22c55e; border-bottom-color: #22c55e; }
        .pane { display: none; }
        .pane.active { display: block; }
        video { width: 100%; border-radius: 8px; background: #000; }
        .no-playback { color: #94a3b8; font-size: 0.875rem; padding: 2rem 0; text-align: center; }
        .seek-wrap { position: relative; margin-top: 0.75rem; }
        .seek-track { position: relative; height: 10px; background: #334155; border-radius: 5px; cursor: pointer; }
        .seek-progress { position: absolute; top: 0; left: 0; height: 100%; background: #22c55e; border-radius: 5px; pointer-events: none; }
        .marker { position: absolute; top: -3px; height: 16px; min-width: 3px; border-radius: 2px; opacity: 0.85; cursor: pointer; }
        .time-row { display: flex; justify-content: space-between; color: #94a3b8; font-size: 0.75rem; margin-top: 0.375rem; }
        .tooltip {
            position: absolute;
            bottom: 22px;
            transform: translateX(-50%);
            background: #0f172a;
            border: 1px solid #334155;
            padding: 0.375rem 0.5rem;
            border-radius: 6px;
            font-size: 0.75rem;
            white-space: pre-line;
            width: max-content;
            max-width: 280px;
            display: none;
            z-index: 10;
        }
        .risk-card, .summary-card, .section-card { background: #1e293b; border-radius: 8px; padding: 1rem; margin-bottom: 0.75rem; }
        .risk-head { display: flex; justify-content: space-between; margin-bottom: 0.5rem; }
        .risk-label { color: #94a3b8; font-size: 0.875rem; }
        .risk-value { font-weight: 600; }
        .risk-green { color: #22c55e; }
        .risk-orange { color: #f97316; }
        .risk-red { color: #ef4444; }
        .risk-track { height: 8px; background: #334155; border-radius: 4px; overflow: hidden; }
        .risk-fill { height: 100%; border-radius: 4px; }
        .risk-bg-green { background: #22c55e; }
        .risk-bg-orange { background: #f97316; }
        .risk-bg-red { background: #ef4444; }
        .summary-card h3, .issues-heading { font-size: 0.9375rem; margin-bottom: 0.5rem; }
        .summary-card p, .section-card p { color: #cbd5e1; font-size: 0.875rem; }
        .issues-heading { margin: 1rem 0 0.5rem; }
        .section-head { display: flex; justify-content: space-between; align-items: center; margin-bottom: 0.375rem; }
        .section-title { font-weight: 600; font-size: 0.875rem; }
        .section-badge { font-size: 0.6875rem; font-weight: 600; padding: 0.125rem 0.5rem; border-radius: 9999px; }
        .badge-flagged { background: #7f1d1d; color: #fecaca; }
        .badge-clear { background: #14532d; color: #bbf7d0; }
        .issue-list { list-style: none; }
        .issue-item { display: flex; gap: 0.625rem; border-radius: 6px; padding: 0.75rem; margin-bottom: 0.5rem; color: #1e293b; }
        .issue-head { display: flex; gap: 0.625rem; align-items: baseline; flex-wrap: wrap; }
        .issue-label { font-weight: 700; font-size: 0.8125rem; }
        .issue-time { background: none; border: none; padding: 0; color: #475569; font-size: 0.75rem; font-weight: 600; }
        button.issue-time { text-decoration: underline; cursor: pointer; }
        .issue-severity { color: #475569; font-size: 0.75rem; }
        .issue-desc { font-size: 0.8125rem; margin-top: 0.25rem; }
        .issues-empty { color: #94a3b8; font-size: 0.875rem; }
        .raw-answer { margin-top: 1rem; color: #94a3b8; font-size: 0.8125rem; }
        .raw-answer pre { white-space: pre-wrap; background: #0f172a; border-radius: 6px; padding: 0.75rem; margin-top: 0.5rem; }
        .utterance-card { background: #1e293b; border-radius: 8px; padding: 1rem; margin-bottom: 0.75rem; }
        .utterance-time { background: none; border: none; padding: 0; color: #22c55e; font-size: 0.75rem; font-weight: 600; text-decoration: underline; cursor: pointer; }
        .utterance-head { display: flex; gap: 0.625rem; align-items: baseline; }
        .utterance-flag { font-size: 0.75rem; font-weight: 600; }
        .utterance-text { margin: 0.375rem 0 0.625rem; font-size: 0.9375rem; }
        .score-row { display: flex; gap: 0.375rem; flex-wrap: wrap; margin-bottom: 0.375rem; }
        .score-chip { background: #334155; border-radius: 9999px; padding: 0.125rem 0.625rem; font-size: 0.75rem; }
        .score-sentiment { background: #1e3a8a; }
        .status { color: #94a3b8; font-size: 0.875rem; margin-top: 0.75rem; display: none; }
    </style>
</head>
<body>
    <div class="container">
        <h1>ClipScreen</h1>
        <p class="tagline">Upload a video or paste a YouTube link to scan it for policy issues.</p>

        <div class="card" id="auth-card">
            <h2 id="auth-title">Sign in</h2>
            <p class="error" id="auth-error"></p>
            <form id="auth-form">
                <input type="text" id="auth-name" placeholder="Name" class="hidden">
                <input type="email" id="auth-email" placeholder="Email" required>
                <input type="password" id="auth-password" placeholder="Password" required>
                <button type="submit" id="auth-submit">Sign in</button>
                <button type="button" class="secondary" id="auth-toggle">Create an account</button>
            </form>
        </div>

        <div id="app" class="hidden">
            <div class="card">
                <h2>Analyze a video</h2>
                <p class="error" id="analyze-error"></p>
                <div class="file-row">
                    <input type="file" id="video-file" accept=".mp4,.mov,.avi">
                </div>
                <p class="or">— or —</p>
                <input type="url" id="youtube-url" placeholder="https://www.youtube.com/watch?v=...">
                <button id="analyze-btn">Analyze</button>
                <p class="status" id="analyze-status">Analyzing… this can take a few minutes.</p>
            </div>

            <div id="results" class="hidden">
                <div class="tabs">
                    <button class="tab active" data-pane="tab-video">Video</button>
                    <button class="tab" data-pane="analysis-pane">Analysis</button>
                    <button class="tab" data-pane="sentiment-pane">Sentiment</button>
                </div>
                <div id="tab-video" class="pane active">
                    <video id="player" playsinline></video>
                    <p class="no-playback hidden" id="no-playback">Local playback is not available for YouTube links. Flagged moments are listed in the Analysis tab.</p>
                    <div class="seek-wrap">
                        <div class="seek-track" id="seek-track">
                            <div class="seek-progress" id="seek-progress"></div>
                            <div id="marker-layer"></div>
                        </div>
                        <div class="tooltip" id="marker-tooltip"></div>
                        <div class="time-row"><span id="time-current">00:00</span><span id="time-total">00:00</span></div>
                    </div>
                </div>
                <div id="results-root"></div>
            </div>
        </div>
    </div>

    <script nonce="{{.Nonce}}">
    (function() {
        var accessToken = '';
        var objectURL = null;
        var registering = false;

        var authCard = document.getElementById('auth-card');
        var authError = document.getElementById('auth-error');
        var app = document.getElementById('app');
        var player = document.getElementById('player');
        var seekTrack = document.getElementById('seek-track');
        var tooltip = document.getElementById('marker-tooltip');

        function showError(el, msg) { el.textContent = msg; el.style.display = 'block'; }
        function hideError(el) { el.style.display = 'none'; }

        function formatTime(s) {
            if (isNaN(s) || s < 0) { return '00:00'; }
            var t = Math.floor(s);
            var m = Math.floor(t / 60);
            var sec = t % 60;
            return (m < 10 ? '0' + m : '' + m) + ':' + (sec < 10 ? '0' + sec : '' + sec);
        }

        document.getElementById('auth-toggle').addEventListener('click', function() {
            registering = !registering;
            document.getElementById('auth-name').classList.toggle('hidden', !registering);
            document.getElementById('auth-title').textContent = registering ? 'Create an account' : 'Sign in';
            document.getElementById('auth-submit').textContent = registering ? 'Register' : 'Sign in';
            this.textContent = registering ? 'I already have an account' : 'Create an account';
        });

        document.getElementById('auth-form').addEventListener('submit', function(e) {
            e.preventDefault();
            hideError(authError);
            var body = {
                email: document.getElementById('auth-email').value,
                password: document.getElementById('auth-password').value
            };
            if (registering) { body.name = document.getElementById('auth-name').value; }
            fetch(registering ? '/api/auth/register' : '/api/auth/login', {
                method: 'POST',
                headers: {'Content-Type': 'application/json'},
                body: JSON.stringify(body)
            }).then(function(r) { return r.json().then(function(data) { return {ok: r.ok, data: data}; }); })
            .then(function(res) {
                if (!res.ok) { showError(authError, res.data.error || 'Sign in failed'); return; }
                accessToken = res.data.accessToken;
                authCard.classList.add('hidden');
                app.classList.remove('hidden');
            }).catch(function() { showError(authError, 'Something went wrong'); });
        });

        var tabs = document.querySelectorAll('.tab');
        function switchTab(paneID) {
            tabs.forEach(function(tab) { tab.classList.toggle('active', tab.dataset.pane === paneID); });
            document.querySelectorAll('.pane').forEach(function(pane) {
                pane.classList.toggle('active', pane.id === paneID);
            });
        }
        tabs.forEach(function(tab) {
            tab.addEventListener('click', function() { switchTab(tab.dataset.pane); });
        });

        function seekTo(t) {
            if (!player.src) { return; }
            player.currentTime = t;
            player.play().catch(function() {});
            switchTab('tab-video');
        }

        function placeMarkers() {
            var duration = player.duration;
            if (!duration || isNaN(duration)) { return; }
            document.querySelectorAll('#marker-layer .marker').forEach(function(marker) {
                if (marker.style.left) { return; }
                var start = parseFloat(marker.dataset.start);
                var end = parseFloat(marker.dataset.end);
                marker.style.left = (start / duration * 100) + '%';
                marker.style.width = Math.max((end - start) / duration * 100, 0.5) + '%';
            });
            document.getElementById('time-total').textContent = formatTime(duration);
        }

        player.addEventListener('loadedmetadata', placeMarkers);
        player.addEventListener('timeupdate', function() {
            document.getElementById('time-current').textContent = formatTime(player.currentTime);
            if (player.duration) {
                document.getElementById('seek-progress').style.width = (player.currentTime / player.duration * 100) + '%';
            }
        });

        seekTrack.addEventListener('click', function(e) {
            if (!player.duration) { return; }
            var rect = seekTrack.getBoundingClientRect();
            seekTo((e.clientX - rect.left) / rect.width * player.duration);
        });

        // Hover resolution scans the markers in issue-list order and takes
        // the first span containing the cursor time, so overlapping issues
        // show the same issue the list shows first.
        function markerAt(t) {
            var markers = document.querySelectorAll('#marker-layer .marker');
            for (var i = 0; i < markers.length; i++) {
                var start = parseFloat(markers[i].dataset.start);
                var end = parseFloat(markers[i].dataset.end);
                if (t >= start && t <= end) { return markers[i]; }
            }
            return null;
        }

        seekTrack.addEventListener('mousemove', function(e) {
            if (!player.duration) { return; }
            var rect = seekTrack.getBoundingClientRect();
            var hit = markerAt((e.clientX - rect.left) / rect.width * player.duration);
            if (!hit) { tooltip.style.display = 'none'; return; }
            tooltip.textContent = hit.dataset.icon + ' ' + hit.dataset.label +
                ' (severity ' + hit.dataset.severity + '/10, ' + hit.dataset.timerange + ')\n' +
                hit.dataset.desc;
            tooltip.style.left = (e.clientX - rect.left) + 'px';
            tooltip.style.display = 'block';
        });
        seekTrack.addEventListener('mouseleave', function() { tooltip.style.display = 'none'; });

        function wireFragment(root) {
            root.querySelectorAll('.seek-to').forEach(function(btn) {
                btn.addEventListener('click', function() { seekTo(parseFloat(btn.dataset.start)); });
            });
            var layer = document.getElementById('marker-layer');
            layer.innerHTML = '';
            var markerTemplate = root.querySelector('#issue-markers');
            if (markerTemplate) {
                layer.appendChild(markerTemplate.content.cloneNode(true));
            }
            layer.querySelectorAll('.marker').forEach(function(marker) {
                marker.addEventListener('click', function(e) {
                    e.stopPropagation();
                    seekTo(parseFloat(marker.dataset.start));
                });
            });
            placeMarkers();
        }

        document.getElementById('analyze-btn').addEventListener('click', function() {
            var btn = this;
            var errEl = document.getElementById('analyze-error');
            var statusEl = document.getElementById('analyze-status');
            hideError(errEl);

            var file = document.getElementById('video-file').files[0];
            var youtubeURL = document.getElementById('youtube-url').value.trim();
            if (!file && !youtubeURL) {
                showError(errEl, 'Choose a video file or paste a YouTube URL');
                return;
            }

            // Load the player up front so the duration is known by the time
            // the results come back; the analysis takes far longer than the
            // metadata fetch.
            if (objectURL) { URL.revokeObjectURL(objectURL); objectURL = null; }
            player.pause();
            if (file) {
                objectURL = URL.createObjectURL(file);
                player.src = objectURL;
                player.controls = true;
                player.classList.remove('hidden');
                document.getElementById('no-playback').classList.add('hidden');
            } else {
                player.removeAttribute('src');
                player.load();
                player.classList.add('hidden');
                document.getElementById('no-playback').classList.remove('hidden');
            }

            var request;
            if (file) {
                var form = new FormData();
                form.append('video', file);
                request = fetch('/api/analyze/', {
                    method: 'POST',
                    headers: {'Authorization': 'Bearer ' + accessToken},
                    body: form
                });
            } else {
                request = fetch('/api/analyze/', {
                    method: 'POST',
                    headers: {
                        'Authorization': 'Bearer ' + accessToken,
                        'Content-Type': 'application/json'
                    },
                    body: JSON.stringify({youtubeUrl: youtubeURL})
                });
            }

            btn.disabled = true;
            statusEl.style.display = 'block';

            request.then(function(r) { return r.json().then(function(data) { return {ok: r.ok, data: data}; }); })
            .then(function(res) {
                if (!res.ok) { throw new Error(res.data.error || 'Analysis failed'); }
                return fetch('/results', {
                    method: 'POST',
                    headers: {'Content-Type': 'application/json'},
                    body: JSON.stringify(Object.assign({}, res.data, {duration: player.duration || 0}))
                }).then(function(r) {
                    if (!r.ok) { throw new Error('Failed to render results'); }
                    return r.text();
                });
            })
            .then(function(fragment) {
                var root = document.getElementById('results-root');
                root.innerHTML = fragment;
                wireFragment(root);
                document.getElementById('results').classList.remove('hidden');
                switchTab(file ? 'tab-video' : 'analysis-pane');
            })
            .catch(function(err) { showError(errEl, err.message || 'Something went wrong'); })
            .finally(function() {
                btn.disabled = false;
                statusEl.style.display = 'none';
            });
        });

        window.addEventListener('beforeunload', function() {
            if (objectURL) { URL.revokeObjectURL(objectURL); }
        });
    })();
    </script>
</body>
</html>`))

type appPageData struct {
	Nonce string
}

func (s *Server) handleAppPage(w http.ResponseWriter, r *http.Request) {
	nonce := httputil.NonceFromContext(r.Context())
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := appPageTemplate.Execute(w, appPageData{Nonce: nonce}); err != nil {
		log.Printf("failed to render app page: %v", err)
	}
}
