package nginx

import "text/template"

// vhostData feeds the virtual host template. Site containers serve plain
// HTTP on port 80 inside the shared docker network; TLS terminates here.
type vhostData struct {
	Hostname      string
	ServerNames   string
	ContainerName string
	UpstreamPort  int
	CertPath      string
	CertKeyPath   string
}

var vhostTemplate = template.Must(template.New("vhost").Parse(`# Managed by sitelaunch - do not edit
server {
    listen 80;
    listen [::]:80;
    server_name {{.ServerNames}};

    return 301 https://$host$request_uri;
}

server {
    listen 443 ssl http2;
    listen [::]:443 ssl http2;
    server_name {{.ServerNames}};

    ssl_certificate {{.CertPath}};
    ssl_certificate_key {{.CertKeyPath}};
    ssl_protocols TLSv1.2 TLSv1.3;
    ssl_ciphers ECDHE-ECDSA-AES128-GCM-SHA256:ECDHE-RSA-AES128-GCM-SHA256:ECDHE-ECDSA-AES256-GCM-SHA384:ECDHE-RSA-AES256-GCM-SHA384;
    ssl_prefer_server_ciphers off;
    ssl_session_cache shared:SSL:10m;
    ssl_session_timeout 1d;

    access_log /var/log/nginx/{{.Hostname}}.access.log;
    error_log /var/log/nginx/{{.Hostname}}.error.log;

    location /health {
        access_log off;
        return 200 "OK";
    }

    location / {
        proxy_pass http://{{.ContainerName}}:{{.UpstreamPort}};

        proxy_set_header Host $host;
        proxy_set_header X-Real-IP $remote_addr;
        proxy_set_header X-Forwarded-For $proxy_add_x_forwarded_for;
        proxy_set_header X-Forwarded-Proto $scheme;
        proxy_set_header X-Forwarded-Host $host;
        proxy_set_header X-Forwarded-Port $server_port;

        proxy_http_version 1.1;
        proxy_set_header Upgrade $http_upgrade;
        proxy_set_header Connection "upgrade";

        proxy_connect_timeout 60s;
        proxy_send_timeout 60s;
        proxy_read_timeout 60s;

        proxy_hide_header X-Frame-Options;
        add_header Content-Security-Policy "frame-ancestors 'self'" always;
    }
}
`))
