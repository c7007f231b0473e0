// Package specfile produces RPM spec files for Python projects.
//
// Generation is two steps. GenerateWithSetupPy asks setup.py for a draft spec
// (bdist_rpm --spec-only). The rewrite then turns that draft into a spec that
// builds python- and python3- sub-packages: a line scanner walks the draft
// through the Preamble, InDescription, AfterPrep and AfterFiles states and
// applies an ordered table of prefix rules, after which the %files stanzas and
// the %changelog entry are appended.
package specfile
