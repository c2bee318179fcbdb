package roles

import "context"

// StaticSource serves a compiled table of role pages.
type StaticSource struct {
	Table map[string]RoleContent
}

// NewStaticSource returns a source backed by the built-in role table.
func NewStaticSource() *StaticSource {
	return &StaticSource{Table: builtinRoles}
}

func (s *StaticSource) Name() string { return TierStatic }

func (s *StaticSource) Lookup(ctx context.Context, slug string) (Record, error) {
	rc, ok := s.Table[slug]
	if !ok {
		return nil, ErrNoRecord
	}
	return toRecord(rc), nil
}

// List enumerates the table in slug order.
func (s *StaticSource) List(ctx context.Context) ([]Entry, error) {
	out := make([]Entry, 0, len(s.Table))
	for slug, rc := range s.Table {
		out = append(out, Entry{Slug: slug, Role: rc.Role})
	}
	sortEntries(out)
	return out, nil
}

func toRecord(rc RoleContent) Record {
	rec := Record{
		"role":    rc.Role,
		"summary": rc.Summary,
		"facts":   toAnySlice(rc.Facts),
		"skills":  toAnySlice(rc.Skills),
	}
	if rc.PDFURL != "" {
		rec["pdfUrl"] = rc.PDFURL
	}
	if rc.ImageQuery != "" {
		rec["imageQuery"] = rc.ImageQuery
	}
	return rec
}

func toAnySlice(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

var builtinRoles = map[string]RoleContent{
	"software-developer": {
		Role:    "Software Developer",
		Summary: "Software developers design, build, and maintain applications and systems that power our digital world. They work across various platforms, from web and mobile applications to enterprise software and embedded systems. In Singapore's thriving tech ecosystem, developers collaborate with cross-functional teams to solve complex problems, implement new features, and ensure software quality. The role demands both technical expertise and creative problem-solving skills, as developers must translate business requirements into functional, scalable, and user-friendly solutions.",
		Facts: []string{
			"Singapore has over 200,000 tech professionals with software development being the most in-demand skill",
			"Average salary ranges from S$60,000 to S$150,000+ annually depending on experience and specialization",
			"Remote and hybrid work options are increasingly common, with 70% of companies offering flexible arrangements",
			"The demand for full-stack developers has grown by 35% year-over-year in Singapore's job market",
		},
		Skills: []string{
			"JavaScript", "Python", "React", "Node.js", "SQL", "Git", "AWS", "Docker",
			"TypeScript", "API Development", "Testing", "Agile", "Problem Solving", "Debugging", "System Design",
		},
		ImageQuery: "software developer coding programming",
	},
	"data-scientist": {
		Role:    "Data Scientist",
		Summary: "Data scientists extract meaningful insights from complex datasets to drive business decisions and innovation. They combine statistical analysis, machine learning, and domain expertise to solve real-world problems across industries. In Singapore's data-driven economy, data scientists work with stakeholders to identify opportunities, build predictive models, and communicate findings through compelling visualizations. The role requires both technical proficiency in programming and analytics tools, as well as strong business acumen to translate data insights into actionable strategies.",
		Facts: []string{
			"Data science roles in Singapore have grown by 50% in the past two years across finance, healthcare, and e-commerce",
			"Average salary ranges from S$80,000 to S$180,000+ with senior roles commanding premium compensation",
			"Python and R are the most sought-after programming languages, with SQL being essential for data manipulation",
			"Machine learning and AI specializations can increase earning potential by 25-40% above base data science roles",
		},
		Skills: []string{
			"Python", "R", "SQL", "Machine Learning", "Statistics", "Pandas", "Scikit-learn", "TensorFlow",
			"Data Visualization", "Jupyter", "A/B Testing", "Big Data", "Cloud Platforms", "Business Intelligence", "Communication",
		},
		ImageQuery: "data science analytics machine learning",
	},
	"digital-marketing-specialist": {
		Role:    "Digital Marketing Specialist",
		Summary: "Digital marketing specialists develop and execute comprehensive online marketing strategies to build brand awareness, engage customers, and drive business growth. They leverage various digital channels including social media, search engines, email, and content marketing to reach target audiences effectively. In Singapore's competitive digital landscape, specialists analyze market trends, create compelling campaigns, and optimize performance using data-driven insights. The role combines creativity with analytical thinking, requiring both strategic planning skills and hands-on execution capabilities.",
		Facts: []string{
			"Digital marketing spending in Singapore is projected to reach S$1.2 billion by 2025, driving job demand",
			"Average salary ranges from S$45,000 to S$120,000+ with specialization in areas like SEO, PPC, or social media",
			"E-commerce growth has increased demand for digital marketing specialists by 40% in the past year",
			"Multi-channel campaign management and marketing automation skills are highly valued by employers",
		},
		Skills: []string{
			"SEO", "Google Ads", "Social Media Marketing", "Content Marketing", "Email Marketing", "Analytics", "PPC",
			"Marketing Automation", "A/B Testing", "Copywriting", "Brand Management", "Campaign Management", "CRM", "Conversion Optimization", "Data Analysis",
		},
		ImageQuery: "digital marketing social media advertising",
	},
	"ux-ui-designer": {
		Role:    "UX/UI Designer",
		Summary: "UX/UI designers create intuitive and engaging digital experiences by combining user research, interaction design, and visual aesthetics. They work closely with product teams to understand user needs, design wireframes and prototypes, and ensure seamless user journeys across web and mobile applications. In Singapore's design-conscious tech industry, designers conduct usability testing, iterate based on feedback, and collaborate with developers to bring designs to life. The role requires both creative vision and analytical thinking to balance user needs with business objectives.",
		Facts: []string{
			"Singapore's design industry has grown by 25% annually, with UX/UI roles being the fastest-growing segment",
			"Average salary ranges from S$55,000 to S$130,000+ with senior designers and design leads earning premium rates",
			"Mobile-first design and accessibility expertise are increasingly important as companies prioritize inclusive design",
			"Design systems and component libraries knowledge can increase earning potential by 20-30% above base UX/UI roles",
		},
		Skills: []string{
			"Figma", "Sketch", "Adobe Creative Suite", "Prototyping", "User Research", "Wireframing", "Usability Testing",
			"Design Systems", "Interaction Design", "Visual Design", "Information Architecture", "Responsive Design", "Accessibility", "HTML/CSS", "Collaboration",
		},
		ImageQuery: "ux ui design wireframe user experience",
	},
	"cybersecurity-analyst": {
		Role:    "Cybersecurity Analyst",
		Summary: "Cybersecurity analysts protect organizations from digital threats by monitoring networks, investigating security incidents, and implementing protective measures. They analyze security logs, identify vulnerabilities, and respond to cyber attacks while ensuring compliance with security policies and regulations. In Singapore's digitally connected economy, analysts work with cutting-edge security tools, conduct risk assessments, and develop incident response procedures. The role demands both technical expertise in security technologies and strong analytical skills to stay ahead of evolving cyber threats.",
		Facts: []string{
			"Cybersecurity job demand in Singapore has increased by 60% as organizations prioritize digital security",
			"Average salary ranges from S$70,000 to S$160,000+ with specialized roles in threat hunting and forensics commanding higher pay",
			"Security certifications like CISSP, CEH, and CISM can increase earning potential by 25-35% above base analyst roles",
			"Cloud security and AI-powered threat detection skills are becoming essential as organizations migrate to hybrid environments",
		},
		Skills: []string{
			"Network Security", "Incident Response", "SIEM Tools", "Penetration Testing", "Risk Assessment", "Compliance", "Forensics",
			"Threat Intelligence", "Vulnerability Assessment", "Security Monitoring", "Firewall Management", "Encryption", "Cloud Security", "Scripting", "Communication",
		},
		ImageQuery: "cybersecurity security analyst monitoring",
	},
	"project-manager": {
		Role:    "Project Manager",
		Summary: "Project managers orchestrate complex initiatives from conception to completion, ensuring projects are delivered on time, within budget, and meet quality standards. They coordinate cross-functional teams, manage stakeholder expectations, and navigate challenges while maintaining project momentum. In Singapore's fast-paced business environment, managers utilize various methodologies including Agile, Scrum, and traditional waterfall approaches to drive successful outcomes. The role requires strong leadership, communication, and organizational skills to balance competing priorities and deliver value to organizations.",
		Facts: []string{
			"Project management roles in Singapore span across industries with technology and construction showing highest demand",
			"Average salary ranges from S$65,000 to S$140,000+ with PMP certification adding 15-20% premium to compensation",
			"Agile and Scrum methodologies are used by 75% of Singapore companies, making these skills highly valuable",
			"Digital transformation projects have increased demand for technical project managers by 30% year-over-year",
		},
		Skills: []string{
			"Project Planning", "Agile/Scrum", "Risk Management", "Stakeholder Management", "Budget Management", "Team Leadership", "Communication",
			"Problem Solving", "Quality Assurance", "Resource Allocation", "Timeline Management", "Reporting", "Change Management", "Negotiation", "Strategic Thinking",
		},
		ImageQuery: "project manager team leadership meeting",
	},
}
